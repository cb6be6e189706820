package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/idea-engine/internal/models"
)

func analyzeHandler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/companies/analyze-company", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"company_profile": {"name": "Acme"}, "challenges": [], "project_ideas": []}}`))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"status": "healthy"}}`))
	})
	mux.HandleFunc("POST /api/v1/projects/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success": false, "error": {"code": "rate_limited", "message": "retry later"}}`))
	})
	return mux
}

func TestClientAnalyzeCompany(t *testing.T) {
	srv := httptest.NewServer(analyzeHandler(t))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.AnalyzeCompany(context.Background(), models.AnalyzeCompanyRequest{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", resp.CompanyProfile.Name)
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(analyzeHandler(t))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Health(context.Background()))
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(analyzeHandler(t))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GenerateProjects(context.Background(), models.GenerateProjectsRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate_limited", apiErr.Code)
}
