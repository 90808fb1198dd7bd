package backup

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-dev/daybook/internal/day"
	"github.com/daybook-dev/daybook/internal/ledger"
	"github.com/daybook-dev/daybook/internal/model"
)

// mockRoundTripper stores PUT bodies by path and fails everything else.
type mockRoundTripper struct {
	objects map[string][]byte
	headers map[string]http.Header
	status  int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.status != 0 {
		return &http.Response{StatusCode: m.status, Body: io.NopCloser(strings.NewReader("<Error><Code>AccessDenied</Code></Error>")), Header: http.Header{}}, nil
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
		body = decodeChunked(body)
	}
	m.objects[req.URL.Path] = body
	m.headers[req.URL.Path] = req.Header.Clone()
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

// decodeChunked strips aws-chunked framing: <hex>[;ext]\r\n<data>\r\n ... 0\r\n.
func decodeChunked(b []byte) []byte {
	var out []byte
	for len(b) > 0 {
		i := bytes.Index(b, []byte("\r\n"))
		if i < 0 {
			break
		}
		sizeField := string(b[:i])
		if j := strings.IndexByte(sizeField, ';'); j >= 0 {
			sizeField = sizeField[:j]
		}
		n, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil || n == 0 {
			break
		}
		b = b[i+2:]
		out = append(out, b[:n]...)
		b = b[n+2:]
	}
	return out
}

func newTestBackup(t *testing.T, rt *mockRoundTripper, prefix string) *S3Backup {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.RetryMaxAttempts = 1
	})
	b := NewWithClient(client, Config{Bucket: "backups", Prefix: prefix}, nil)
	b.now = func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) }
	return b
}

func testSnapshot() ledger.Snapshot {
	d, _ := decimal.NewFromString("60")
	return ledger.Snapshot{
		Records: []model.Record{{
			Date:    day.New(2024, time.January, 1),
			Balance: model.Balance{IncomeTotal: decimal.NewFromInt(100), ExpenseTotal: decimal.NewFromInt(40), Closing: d},
		}},
	}
}

func TestKey(t *testing.T) {
	b := NewWithClient(nil, Config{Bucket: "x", Prefix: "/daybook/"}, nil)
	at := time.Date(2025, 1, 15, 11, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "daybook/alice/history-20250115T103000Z.txt", b.Key("alice", at))

	b = NewWithClient(nil, Config{Bucket: "x"}, nil)
	assert.Equal(t, "alice/history-20250115T103000Z.txt", b.Key("alice", at))
}

func TestUpload(t *testing.T) {
	rt := &mockRoundTripper{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	b := newTestBackup(t, rt, "daybook")

	key, err := b.Upload(context.Background(), "alice", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "daybook/alice/history-20250115T103000Z.txt", key)

	body, ok := rt.objects["/backups/"+key]
	require.True(t, ok, "uploaded paths: %v", rt.objects)
	assert.Equal(t, "01-01-2024;0.00;100.00;40.00;60.00\n", string(body))
	assert.Equal(t, "alice", rt.headers["/backups/"+key].Get("X-Amz-Meta-User"))
}

func TestUpload_Error(t *testing.T) {
	rt := &mockRoundTripper{objects: map[string][]byte{}, headers: map[string]http.Header{}, status: http.StatusForbidden}
	b := newTestBackup(t, rt, "")

	_, err := b.Upload(context.Background(), "alice", testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://backups/alice/history-")
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.Error(t, err)
}
