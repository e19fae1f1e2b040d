package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oakmontcap/lendboard/internal/board"
	"github.com/oakmontcap/lendboard/internal/model"
)

// apiClient talks to the board server's REST API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// do performs a JSON request. A nil out discards the response body.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, e.Error)
	}
	return fmt.Errorf("%s", resp.Status)
}

func (c *apiClient) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/v1/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) ListRows(ctx context.Context, f model.RowFilter) ([]model.JoinedRow, error) {
	q := url.Values{}
	if f.Pivot != "" {
		q.Set("pivot", string(f.Pivot))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(f.Stages) > 0 {
		parts := make([]string, len(f.Stages))
		for i, s := range f.Stages {
			parts[i] = string(s)
		}
		q.Set("stages", strings.Join(parts, ","))
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.Dir != "" {
		q.Set("dir", string(f.Dir))
	}

	var out struct {
		Rows []model.JoinedRow `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/rows", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *apiClient) GetRow(ctx context.Context, key string) (model.JoinedRow, []string, error) {
	var out struct {
		Row         model.JoinedRow `json:"row"`
		DirtyFields []string        `json:"dirty_fields"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/rows/"+url.PathEscape(key), nil, nil, &out)
	return out.Row, out.DirtyFields, err
}

func (c *apiClient) SaveRow(ctx context.Context, key string, changes map[string]string, actor string) (model.JoinedRow, error) {
	in := map[string]any{"changes": changes, "actor": actor}
	var out struct {
		Row model.JoinedRow `json:"row"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/rows/"+url.PathEscape(key)+"/save", nil, in, &out)
	return out.Row, err
}

func (c *apiClient) RowEvents(ctx context.Context, key string) ([]model.RowEvent, error) {
	var out struct {
		Events []model.RowEvent `json:"events"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/rows/"+url.PathEscape(key)+"/events", nil, nil, &out)
	return out.Events, err
}

func (c *apiClient) Refresh(ctx context.Context) (board.RefreshStats, error) {
	var out board.RefreshStats
	err := c.do(ctx, http.MethodPost, "/v1/refresh", nil, nil, &out)
	return out, err
}

func (c *apiClient) ListPreferences(ctx context.Context) ([]model.Preference, error) {
	var out struct {
		Preferences []model.Preference `json:"preferences"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/preferences", nil, nil, &out)
	return out.Preferences, err
}

func (c *apiClient) GetPreference(ctx context.Context, view string) (model.Preference, error) {
	var out model.Preference
	err := c.do(ctx, http.MethodGet, "/v1/preferences/"+url.PathEscape(view), nil, nil, &out)
	return out, err
}

func (c *apiClient) SetPreference(ctx context.Context, view string, f model.RowFilter) (model.Preference, error) {
	var out model.Preference
	err := c.do(ctx, http.MethodPut, "/v1/preferences/"+url.PathEscape(view), nil, f, &out)
	return out, err
}

func (c *apiClient) DeletePreference(ctx context.Context, view string) error {
	return c.do(ctx, http.MethodDelete, "/v1/preferences/"+url.PathEscape(view), nil, nil, nil)
}

func (c *apiClient) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Snapshots []model.Snapshot `json:"snapshots"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/snapshots", q, nil, &out)
	return out.Snapshots, err
}

func (c *apiClient) GetSnapshot(ctx context.Context, id int64) (model.Snapshot, error) {
	var out model.Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/snapshots/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

func (c *apiClient) LatestSnapshot(ctx context.Context) (model.Snapshot, error) {
	var out model.Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/snapshots/latest", nil, nil, &out)
	return out, err
}

// OpenEventStream connects to the server's SSE endpoint. The caller must
// close the returned body.
func (c *apiClient) OpenEventStream(ctx context.Context, topics []string) (io.ReadCloser, error) {
	u := c.baseURL + "/v1/events/stream"
	if len(topics) > 0 {
		q := url.Values{}
		q.Set("topics", strings.Join(topics, ","))
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// No client timeout on a long-lived stream.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp.Body, nil
}
