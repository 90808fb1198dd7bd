package commands

import (
	"fmt"
	"strings"

	"github.com/daybook-dev/daybook/internal/model"
	"github.com/daybook-dev/daybook/internal/money"
)

// parseAmounts reads "Category=amount" flag values. Amounts may use a comma
// as decimal separator ("Cash=12,50").
func parseAmounts(values []string) (model.Amounts, error) {
	out := make(model.Amounts, len(values))
	for _, v := range values {
		name, amount, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.TrimSpace(amount) == "" {
			return nil, fmt.Errorf("invalid amount %q, want Category=amount", v)
		}
		d, err := money.Parse(amount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("category %q given twice", name)
		}
		out[name] = d
	}
	return out, nil
}
