package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/daybook-dev/daybook/internal/ledger"
)

// Metric names written by WriteMetrics.
const (
	MetricClosing = "daybook_closing_balance"
	MetricIncome  = "daybook_income_total"
	MetricExpense = "daybook_expense_total"
	MetricDays    = "daybook_days"
)

// NewMetricsRegistry returns a registry holding the ledger gauges for user.
func NewMetricsRegistry(user string, s ledger.Summary) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	gauges := []struct {
		name, help string
		value      float64
	}{
		{MetricClosing, "Closing balance of the latest booked day.", s.Closing.InexactFloat64()},
		{MetricIncome, "Sum of income over all booked days.", s.IncomeTotal.InexactFloat64()},
		{MetricExpense, "Sum of expenses over all booked days.", s.ExpenseTotal.InexactFloat64()},
		{MetricDays, "Number of booked days.", float64(s.Days)},
	}
	for _, g := range gauges {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: g.name, Help: g.help}, []string{"user"})
		vec.WithLabelValues(user).Set(g.value)
		reg.MustRegister(vec)
	}
	return reg
}

// WriteMetrics writes the ledger gauges in the Prometheus text format, for a
// node-exporter textfile collector.
func WriteMetrics(path, user string, s ledger.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, NewMetricsRegistry(user, s)); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
