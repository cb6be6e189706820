// Package client is a Go SDK for the idea-engine API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/devtrail/idea-engine/internal/models"
)

// Client is a Go SDK for the idea-engine API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout. Analyses run two model calls, so
// the default is generous.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new idea-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-success response from the engine
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// AnalyzeCompany runs the full analysis pipeline for one company
func (c *Client) AnalyzeCompany(ctx context.Context, req models.AnalyzeCompanyRequest) (*models.AnalyzeCompanyResponse, error) {
	return doJSON[*models.AnalyzeCompanyResponse](ctx, c, "POST", "/api/v1/companies/analyze-company", req)
}

// PreviewTokens estimates prompt cost without calling the model
func (c *Client) PreviewTokens(ctx context.Context, req models.PreviewTokensRequest) (*models.PreviewTokensResponse, error) {
	return doJSON[*models.PreviewTokensResponse](ctx, c, "POST", "/api/v1/companies/preview-tokens", req)
}

// GetProfile retrieves a previously analyzed company profile
func (c *Client) GetProfile(ctx context.Context, companyName string) (*models.CompanyProfile, error) {
	path := "/api/v1/companies/" + url.PathEscape(companyName) + "/profile"
	return doJSON[*models.CompanyProfile](ctx, c, "GET", path, nil)
}

// GenerateProjects produces project ideas for an already analyzed company
func (c *Client) GenerateProjects(ctx context.Context, req models.GenerateProjectsRequest) (*models.GenerateProjectsResponse, error) {
	return doJSON[*models.GenerateProjectsResponse](ctx, c, "POST", "/api/v1/projects/generate", req)
}

// RefineProject reworks one project idea against its challenge
func (c *Client) RefineProject(ctx context.Context, req models.RefineProjectRequest) (*models.ProjectIdea, error) {
	return doJSON[*models.ProjectIdea](ctx, c, "POST", "/api/v1/projects/refine", req)
}

// ExportProjects renders project ideas as a downloadable document and
// returns the raw body with its content type.
func (c *Client) ExportProjects(ctx context.Context, req models.ExportRequest) ([]byte, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/projects/export", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", apiErrorFromBody(resp.StatusCode, respBody)
	}

	return respBody, resp.Header.Get("Content-Type"), nil
}

// ListOptions narrows an analysis history listing
type ListOptions struct {
	CompanyName string
	Limit       int
	Offset      int
}

// ListAnalyses retrieves persisted analyses, newest first
func (c *Client) ListAnalyses(ctx context.Context, opts ListOptions) ([]*models.AnalysisRecord, error) {
	q := url.Values{}
	if opts.CompanyName != "" {
		q.Set("company", opts.CompanyName)
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", opts.Offset))
	}

	path := "/api/v1/analyses/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return doJSON[[]*models.AnalysisRecord](ctx, c, "GET", path, nil)
}

// GetAnalysis retrieves one persisted analysis by ID
func (c *Client) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	return doJSON[*models.AnalysisRecord](ctx, c, "GET", "/api/v1/analyses/"+url.PathEscape(id), nil)
}

// DeleteAnalysis removes one persisted analysis
func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	_, err := doJSON[map[string]string](ctx, c, "DELETE", "/api/v1/analyses/"+url.PathEscape(id), nil)
	return err
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := doJSON[map[string]string](ctx, c, "GET", "/health", nil)
	return err
}

// doJSON performs a request and unwraps the engine's response envelope
func doJSON[T any](ctx context.Context, c *Client, method, path string, reqBody any) (T, error) {
	var zero T

	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return zero, apiErr
	}

	return result.Data, nil
}

func apiErrorFromBody(status int, body []byte) error {
	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
