package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPSource fetches datasets from the analytics host's dataset endpoint.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource creates a source targeting the given analytics host base URL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

var _ Source = (*HTTPSource)(nil)

// Fetch returns the rows of the dataset registered under alias. The host
// serves rows as an array of string-keyed objects; non-string cell values are
// rendered to strings.
func (s *HTTPSource) Fetch(ctx context.Context, alias string) ([]map[string]string, error) {
	u := s.baseURL + "/datasets/" + url.PathEscape(alias)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset %s: %w", alias, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", alias, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("dataset %s: HTTP %d", alias, resp.StatusCode)
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", alias, err)
	}

	rows := make([]map[string]string, 0, len(raw))
	for _, r := range raw {
		row := make(map[string]string, len(r))
		for k, v := range r {
			row[k] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		// Trim the ".0" JSON gives integral numbers.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}
