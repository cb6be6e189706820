package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/idea-engine/internal/analysis"
	"github.com/devtrail/idea-engine/internal/cache"
	"github.com/devtrail/idea-engine/internal/config"
	"github.com/devtrail/idea-engine/internal/llm"
	"github.com/devtrail/idea-engine/internal/models"
	"github.com/devtrail/idea-engine/internal/projects"
	"github.com/devtrail/idea-engine/internal/prompts"
	"github.com/devtrail/idea-engine/internal/services"
	"github.com/devtrail/idea-engine/internal/storage"
	"github.com/devtrail/idea-engine/internal/tokens"
)

const analysisJSON = `{
	"name": "Acme Analytics",
	"industry": "technology",
	"size": "scaleup",
	"description": "Acme builds realtime analytics dashboards.",
	"business_focus": "B2B analytics SaaS",
	"tech_stack": {"backend": ["Go"], "database": ["PostgreSQL"]},
	"engineering_challenges": [
		{"title": "Streaming ingestion", "description": "Scale the ingestion path.", "difficulty": "advanced"},
		{"title": "Query latency", "description": "Keep queries fast.", "difficulty": "intermediate"}
	]
}`

const ideasJSON = `[
	{"title": "Event Replay Console", "description": "Replays production streams.", "tech_stack": ["Go"], "difficulty": "advanced", "challenge_id": "challenge_1", "challenge_title": "Streaming ingestion"},
	{"title": "Query Heatmap", "description": "Visualizes slow queries.", "difficulty": "intermediate", "challenge_title": "Query latency"}
]`

// fakeRepo is an in-memory Repository for handler tests
type fakeRepo struct {
	records map[string]*models.AnalysisRecord
	order   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*models.AnalysisRecord)}
}

func (f *fakeRepo) CreateAnalysis(_ context.Context, rec *models.AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = "rec_" + rec.CompanyName
	}
	f.records[rec.ID] = rec
	f.order = append(f.order, rec.ID)
	return nil
}

func (f *fakeRepo) GetAnalysis(_ context.Context, id string) (*models.AnalysisRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRepo) GetLatestByCompany(_ context.Context, name string) (*models.AnalysisRecord, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		rec := f.records[f.order[i]]
		if rec.CompanyName == name {
			return rec, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeRepo) ListAnalyses(_ context.Context, _ models.ListFilters) ([]*models.AnalysisRecord, error) {
	out := make([]*models.AnalysisRecord, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.records[f.order[i]])
	}
	return out, nil
}

func (f *fakeRepo) DeleteAnalysis(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

type testEnv struct {
	server *Server
	mock   *llm.MockCompleter
	repo   *fakeRepo
	cache  *cache.Memory
}

func newTestEnv(t *testing.T, mock *llm.MockCompleter, repo storage.Repository) *testEnv {
	t.Helper()

	store, err := prompts.NewStore()
	require.NoError(t, err)

	mem := cache.NewMemory(time.Hour, 100)
	env := &testEnv{
		mock:  mock,
		cache: mem,
	}
	if fr, ok := repo.(*fakeRepo); ok {
		env.repo = fr
	}

	env.server = NewServer(
		config.ServerConfig{},
		analysis.NewService(mock, store, nil),
		projects.NewGenerator(mock, store),
		tokens.NewEstimator(8000),
		mem,
		repo,
		services.NewRegistry(),
	)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rr, req)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected success envelope, body: %s", rr.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(envelope.Data, &out))
	return out
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apiError {
	t.Helper()

	var envelope struct {
		Success bool      `json:"success"`
		Error   *apiError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	return *envelope.Error
}

func TestAnalyzeCompanyEndToEnd(t *testing.T) {
	mock := &llm.MockCompleter{Responses: []string{analysisJSON, ideasJSON}}
	env := newTestEnv(t, mock, newFakeRepo())

	rr := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{
		CompanyName: "Acme Analytics",
		TotalIdeas:  4,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeData[models.AnalyzeCompanyResponse](t, rr)
	assert.Equal(t, "Acme Analytics", resp.CompanyProfile.Name)
	assert.Len(t, resp.Challenges, 2)
	assert.Len(t, resp.ProjectIdeas, 2)
	assert.False(t, resp.AnalysisTimestamp.IsZero())

	// Two model calls: one analysis, one generation.
	assert.Len(t, mock.Prompts, 2)

	// Completed analysis was persisted.
	assert.Len(t, env.repo.records, 1)
}

func TestAnalyzeCompanyCacheHit(t *testing.T) {
	mock := &llm.MockCompleter{Responses: []string{analysisJSON, ideasJSON}}
	env := newTestEnv(t, mock, nil)

	first := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{CompanyName: "Acme"})
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{CompanyName: "  ACME  "})
	require.Equal(t, http.StatusOK, second.Code)

	// The second request is served from cache: no new model calls.
	assert.Len(t, mock.Prompts, 2)
}

func TestAnalyzeCompanyValidation(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Code)
}

func TestAnalyzeCompanyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		responses  []string
		wantStatus int
		wantCode   string
	}{
		{"auth", &llm.Error{Kind: llm.KindAuth, Message: "bad key"}, nil, http.StatusUnauthorized, "upstream_auth"},
		{"rate limit", &llm.Error{Kind: llm.KindRateLimit, Message: "slow down"}, nil, http.StatusTooManyRequests, "rate_limited"},
		{"transport", &llm.Error{Kind: llm.KindTransport, Message: "timeout"}, nil, http.StatusServiceUnavailable, "upstream_unreachable"},
		{"upstream", &llm.Error{Kind: llm.KindUpstream, Message: "500"}, nil, http.StatusBadGateway, "upstream_error"},
		{"malformed", nil, []string{"this is not json"}, http.StatusBadGateway, "malformed_model_output"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := &llm.MockCompleter{Err: tc.err, Responses: tc.responses}
			env := newTestEnv(t, mock, nil)

			rr := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{CompanyName: "Acme"})
			require.Equal(t, tc.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tc.wantCode, decodeError(t, rr).Code)
		})
	}
}

func TestPreviewTokens(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/companies/preview-tokens", models.PreviewTokensRequest{
		CompanyName:    "Acme",
		AdditionalInfo: "A data analytics company in Berlin.",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeData[models.PreviewTokensResponse](t, rr)
	assert.Greater(t, resp.EstimatedTokens, 0)
	assert.Greater(t, resp.CharCount, 0)
	assert.False(t, resp.HighUsage)

	// No model call for previews.
	assert.Empty(t, env.mock.Prompts)
}

func TestGetProfileFromCache(t *testing.T) {
	mock := &llm.MockCompleter{Responses: []string{analysisJSON, ideasJSON}}
	env := newTestEnv(t, mock, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{CompanyName: "Acme"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/companies/Acme/profile", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	profile := decodeData[models.CompanyProfile](t, rr)
	assert.Equal(t, "Acme", profile.Name)
}

func TestGetProfileNotFound(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodGet, "/api/v1/companies/Unknown/profile", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGenerateProjectsEndpoint(t *testing.T) {
	mock := &llm.MockCompleter{Responses: []string{ideasJSON}}
	env := newTestEnv(t, mock, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/projects/generate", models.GenerateProjectsRequest{
		CompanyProfile: models.CompanyProfile{Name: "Acme"},
		Challenges: []models.EngineeringChallenge{
			{ID: "challenge_1", Title: "Streaming ingestion", Description: "Scale it."},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeData[models.GenerateProjectsResponse](t, rr)
	assert.Equal(t, 2, resp.TotalProjects)
	assert.Len(t, resp.Projects, 2)
}

func TestGenerateProjectsValidation(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/projects/generate", models.GenerateProjectsRequest{
		CompanyProfile: models.CompanyProfile{Name: "Acme"},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefineProjectEndpoint(t *testing.T) {
	refined := `{"title": "Better Console", "description": "An improved replay console."}`
	mock := &llm.MockCompleter{Responses: []string{refined}}
	env := newTestEnv(t, mock, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/projects/refine", models.RefineProjectRequest{
		Project:     models.ProjectIdea{Title: "Console", Description: "A console."},
		CompanyName: "Acme",
		Challenge:   models.EngineeringChallenge{Title: "Streaming ingestion", Description: "Scale it."},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	idea := decodeData[models.ProjectIdea](t, rr)
	assert.Equal(t, "Better Console", idea.Title)
}

func TestExportProjectsCSV(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/projects/export", models.ExportRequest{
		Projects: []models.ProjectIdea{{Title: "Console", Description: "A console."}},
		Format:   "csv",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "project-ideas.csv")
	assert.Contains(t, rr.Body.String(), "Console")
}

func TestExportProjectsUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/projects/export", models.ExportRequest{
		Projects: []models.ProjectIdea{{Title: "Console", Description: "A console."}},
		Format:   "pdf",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unsupported_format", decodeError(t, rr).Code)
}

func TestAnalysesHistory(t *testing.T) {
	mock := &llm.MockCompleter{Responses: []string{analysisJSON, ideasJSON}}
	env := newTestEnv(t, mock, newFakeRepo())

	rr := env.do(t, http.MethodPost, "/api/v1/companies/analyze-company", models.AnalyzeCompanyRequest{CompanyName: "Acme"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	records := decodeData[[]*models.AnalysisRecord](t, rr)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CompanyName)

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+records[0].ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/v1/analyses/"+records[0].ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/analyses/"+records[0].ID, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalysesHistoryStorageDisabled(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodGet, "/api/v1/analyses/", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "storage_disabled", decodeError(t, rr).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, &llm.MockCompleter{}, nil)

	rr := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	counters := decodeData[map[string]int64](t, rr)
	assert.GreaterOrEqual(t, counters["requests"], int64(3))
}
