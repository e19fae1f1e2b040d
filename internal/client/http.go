package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/oakmontcap/lendboard/internal/model"
)

// HTTPClient implements Backend against the lending backend's HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g.
// "https://lending.internal"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Compile-time check that HTTPClient implements Backend.
var _ Backend = (*HTTPClient)(nil)

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// SetToken replaces the bearer token used on subsequent requests.
func (c *HTTPClient) SetToken(token string) { c.token = token }

// --- Auth ---

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Verify(ctx context.Context, token string) (*model.User, error) {
	body := map[string]string{"token": token}
	var user model.User
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/verify", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Projects ---

func (c *HTTPClient) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects/"+formatID(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdateProject(ctx context.Context, id int64, req *UpdateProjectRequest) (*model.Project, error) {
	var p model.Project
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/projects/"+formatID(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Loans ---

func (c *HTTPClient) ListLoans(ctx context.Context) ([]model.Loan, error) {
	var out []model.Loan
	if err := c.doJSON(ctx, http.MethodGet, "/v1/loans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateLoan(ctx context.Context, projectID int64, phase model.LoanPhase, req *UpdateLoanRequest) (*model.Loan, error) {
	if !phase.IsValid() {
		return nil, fmt.Errorf("invalid loan phase %q", phase)
	}
	path := "/v1/projects/" + formatID(projectID) + "/loans/" + phase.String()
	var l model.Loan
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// --- Participations ---

func (c *HTTPClient) ListParticipations(ctx context.Context) ([]model.Participation, error) {
	var out []model.Participation
	if err := c.doJSON(ctx, http.MethodGet, "/v1/participations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateParticipation(ctx context.Context, id int64, req *UpdateParticipationRequest) (*model.Participation, error) {
	var p model.Participation
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/participations/"+formatID(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Covenants / Guarantees ---

func (c *HTTPClient) ListCovenants(ctx context.Context) ([]model.Covenant, error) {
	var out []model.Covenant
	if err := c.doJSON(ctx, http.MethodGet, "/v1/covenants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListGuarantees(ctx context.Context) ([]model.Guarantee, error) {
	var out []model.Guarantee
	if err := c.doJSON(ctx, http.MethodGet, "/v1/guarantees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Equity ---

func (c *HTTPClient) ListEquityCommitments(ctx context.Context) ([]model.EquityCommitment, error) {
	var out []model.EquityCommitment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/equity-commitments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateEquityCommitment(ctx context.Context, id int64, req *UpdateEquityCommitmentRequest) (*model.EquityCommitment, error) {
	var ec model.EquityCommitment
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/equity-commitments/"+formatID(id), req, &ec); err != nil {
		return nil, err
	}
	return &ec, nil
}

// --- Reference data ---

func (c *HTTPClient) ListBanks(ctx context.Context) ([]model.Bank, error) {
	var out []model.Bank
	if err := c.doJSON(ctx, http.MethodGet, "/v1/banks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListPartners(ctx context.Context) ([]model.Partner, error) {
	var out []model.Partner
	if err := c.doJSON(ctx, http.MethodGet, "/v1/partners", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListRegions(ctx context.Context) ([]model.Region, error) {
	var out []model.Region
	if err := c.doJSON(ctx, http.MethodGet, "/v1/regions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProductTypes(ctx context.Context) ([]model.ProductType, error) {
	var out []model.ProductType
	if err := c.doJSON(ctx, http.MethodGet, "/v1/product-types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- internal helpers ---

// APIError represents an error response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response. If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(unwrapData(respBody), result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// unwrapData normalizes the backend's two response shapes. Endpoints return
// either the payload directly or wrapped as {"data": ...}; this is the one
// place that difference is handled.
func unwrapData(body []byte) []byte {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil &&
		len(wrapper.Data) > 0 && string(wrapper.Data) != "null" {
		return wrapper.Data
	}
	return body
}
