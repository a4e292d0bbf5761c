// Package firms fetches raw wildfire detection records over HTTP, either as
// the {"fires": [...]} JSON envelope served by the fires API or as a FIRMS
// area CSV export. The upstream is treated as an opaque collaborator; every
// record comes back untyped for the validator to judge.
package firms

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/ingest"
)

// Format selects how the response body is decoded.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Client implements ingest.Source against an HTTP endpoint.
type Client struct {
	url        string
	format     Format
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a fires endpoint client.
func NewClient(url string, format Format, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		format:     format,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchRecords performs one GET against the configured endpoint. Failures are
// classified through the ingest sentinels: request/HTTP failures wrap
// ErrTransport, undecodable or non-collection bodies wrap ErrStructure.
func (c *Client) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ingest.ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ingest.ErrTransport, resp.StatusCode, c.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ingest.ErrTransport, err)
	}

	switch c.format {
	case FormatCSV:
		return decodeCSV(body)
	default:
		return decodeJSON(body)
	}
}

// decodeJSON accepts the {"fires": [...]} envelope or a bare top-level array.
// Array elements are decoded individually so a non-object element becomes a
// nil record the validator drops, instead of sinking the whole batch.
func decodeJSON(body []byte) ([]domain.RawRecord, error) {
	var envelope struct {
		Fires []any `json:"fires"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Fires != nil {
		return toRecords(envelope.Fires), nil
	}

	var bare []any
	if err := json.Unmarshal(body, &bare); err == nil {
		return toRecords(bare), nil
	}

	return nil, fmt.Errorf("%w: no fires array in response", ingest.ErrStructure)
}

// toRecords keeps object elements and leaves everything else nil.
func toRecords(items []any) []domain.RawRecord {
	records := make([]domain.RawRecord, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			records[i] = domain.RawRecord(m)
		}
	}
	return records
}

// decodeCSV maps a header-prefixed FIRMS CSV export into raw records, one map
// per row keyed by column name. Values stay strings; the validator coerces.
func decodeCSV(body []byte) ([]domain.RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed CSV: %v", ingest.ErrStructure, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty CSV body", ingest.ErrStructure)
	}

	header := rows[0]
	records := make([]domain.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(domain.RawRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
