package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devtrail/idea-engine/internal/cache"
	"github.com/devtrail/idea-engine/internal/export"
	"github.com/devtrail/idea-engine/internal/llm"
	"github.com/devtrail/idea-engine/internal/models"
	"github.com/devtrail/idea-engine/internal/parser"
	"github.com/devtrail/idea-engine/internal/storage"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// pipelineErrorStatus maps pipeline failures to HTTP responses. Model
// failures carry their upstream classification; everything that reached
// the model but came back unusable is a 502.
func pipelineErrorStatus(err error) (int, string, string) {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case llm.KindAuth:
			return http.StatusUnauthorized, "upstream_auth", "model provider rejected the configured credentials"
		case llm.KindRateLimit:
			return http.StatusTooManyRequests, "rate_limited", "model provider rate limit exceeded, retry later"
		case llm.KindTransport:
			return http.StatusServiceUnavailable, "upstream_unreachable", "could not reach the model provider"
		default:
			return http.StatusBadGateway, "upstream_error", "model provider returned an error"
		}
	}

	var malformed *parser.MalformedResponseError
	if errors.As(err, &malformed) {
		return http.StatusBadGateway, "malformed_model_output", malformed.Error()
	}

	return http.StatusBadGateway, "pipeline_error", "analysis pipeline failed"
}

func (s *Server) respondPipelineError(w http.ResponseWriter, err error, op string) {
	s.metrics.upstreamFailures.Add(1)
	status, code, message := pipelineErrorStatus(err)
	slog.Error(op+" failed", "error", err, "status", status)
	respondError(w, status, code, message)
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.registry.HealthCheckAll(r.Context())

	failing := make([]string, 0)
	for name, err := range results {
		if err != nil {
			slog.Warn("dependency not ready", "dependency", name, "error", err)
			failing = append(failing, name)
		}
	}

	if len(failing) > 0 {
		respondError(w, http.StatusServiceUnavailable, "not_ready",
			"dependencies not ready: "+strings.Join(failing, ", "))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.snapshot())
}

// Company handlers

func (s *Server) handleAnalyzeCompany(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.CompanyName) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "company_name is required")
		return
	}

	key := cache.Key(req.CompanyName)
	if cached, ok, err := s.cache.Get(r.Context(), key); err != nil {
		slog.Warn("cache lookup failed", "key", key, "error", err)
	} else if ok {
		s.metrics.cacheHits.Add(1)
		respondJSON(w, http.StatusOK, cached)
		return
	} else {
		s.metrics.cacheMisses.Add(1)
	}

	resp, err := s.runAnalysisPipeline(r, req, nil)
	if err != nil {
		s.respondPipelineError(w, err, "company analysis")
		return
	}

	if err := s.cache.Set(r.Context(), key, resp); err != nil {
		slog.Warn("cache store failed", "key", key, "error", err)
	}
	s.persistAnalysis(r, req.CompanyName, resp)

	respondJSON(w, http.StatusOK, resp)
}

// stageFunc is invoked before each pipeline stage, used by the websocket
// stream to report progress. nil means no reporting.
type stageFunc func(stage string)

func (s *Server) runAnalysisPipeline(r *http.Request, req models.AnalyzeCompanyRequest, stage stageFunc) (*models.AnalyzeCompanyResponse, error) {
	ctx := r.Context()

	if stage != nil && req.CompanyWebsite != "" {
		stage("website_fetch")
	}
	summary := s.analyzer.WebsiteSummary(ctx, req.CompanyWebsite)

	if stage != nil {
		stage("analysis")
	}
	result, err := s.analyzer.AnalyzeWithSummary(ctx, req, summary)
	if err != nil {
		return nil, err
	}
	s.metrics.analyses.Add(1)

	if stage != nil {
		stage("generation")
	}
	ideas, err := s.generator.Generate(ctx, models.GenerateProjectsRequest{
		CompanyProfile: result.Profile,
		Challenges:     result.Challenges,
		UserSkills:     req.UserSkills,
		TotalIdeas:     req.TotalIdeas,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.generations.Add(1)

	return &models.AnalyzeCompanyResponse{
		CompanyProfile:    result.Profile,
		Challenges:        result.Challenges,
		ProjectIdeas:      ideas,
		AnalysisTimestamp: time.Now().UTC(),
	}, nil
}

// persistAnalysis saves a completed analysis when storage is configured.
// Persistence failures never fail the request.
func (s *Server) persistAnalysis(r *http.Request, companyName string, resp *models.AnalyzeCompanyResponse) {
	if s.repo == nil {
		return
	}

	rec := &models.AnalysisRecord{
		CompanyName: companyName,
		Profile:     resp.CompanyProfile,
		Challenges:  resp.Challenges,
		Ideas:       resp.ProjectIdeas,
		CreatedAt:   resp.AnalysisTimestamp,
	}
	if err := s.repo.CreateAnalysis(r.Context(), rec); err != nil {
		slog.Warn("failed to persist analysis", "company", companyName, "error", err)
	}
}

func (s *Server) handlePreviewTokens(w http.ResponseWriter, r *http.Request) {
	var req models.PreviewTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	summary := s.analyzer.WebsiteSummary(r.Context(), req.CompanyWebsite)

	var b strings.Builder
	b.WriteString(req.CompanyName)
	if req.AdditionalInfo != "" {
		b.WriteString("\n")
		b.WriteString(req.AdditionalInfo)
	}
	if summary != "" {
		b.WriteString("\n")
		b.WriteString(summary)
	}

	estimate := s.estimator.Estimate(b.String())

	respondJSON(w, http.StatusOK, models.PreviewTokensResponse{
		EstimatedTokens: estimate.EstimatedTokens,
		HighUsage:       estimate.HighUsage,
		CharCount:       estimate.CharCount,
		WordCount:       estimate.WordCount,
		WebsiteSummary:  summary,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "company name is required")
		return
	}

	if cached, ok, err := s.cache.Get(r.Context(), cache.Key(name)); err != nil {
		slog.Warn("cache lookup failed", "company", name, "error", err)
	} else if ok {
		s.metrics.cacheHits.Add(1)
		respondJSON(w, http.StatusOK, cached.CompanyProfile)
		return
	}
	s.metrics.cacheMisses.Add(1)

	if s.repo != nil {
		rec, err := s.repo.GetLatestByCompany(r.Context(), name)
		if err == nil {
			respondJSON(w, http.StatusOK, rec.Profile)
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("failed to look up stored profile", "company", name, "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up profile")
			return
		}
	}

	respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no analysis found for %q", name))
}

// Project handlers

func (s *Server) handleGenerateProjects(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateProjectsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.CompanyProfile.Name) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "company_profile.name is required")
		return
	}
	if len(req.Challenges) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "at least one challenge is required")
		return
	}

	ideas, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.respondPipelineError(w, err, "project generation")
		return
	}
	s.metrics.generations.Add(1)

	respondJSON(w, http.StatusOK, models.GenerateProjectsResponse{
		Projects:            ideas,
		TotalProjects:       len(ideas),
		GenerationTimestamp: time.Now().UTC(),
	})
}

func (s *Server) handleRefineProject(w http.ResponseWriter, r *http.Request) {
	var req models.RefineProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Project.Title) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "project.title is required")
		return
	}

	refined, err := s.generator.Refine(r.Context(), req)
	if err != nil {
		s.respondPipelineError(w, err, "project refinement")
		return
	}
	s.metrics.refinements.Add(1)

	respondJSON(w, http.StatusOK, refined)
}

func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if len(req.Projects) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "projects list is empty")
		return
	}

	doc, err := export.Render(req.Projects, req.Format)
	if err != nil {
		var unsupported *export.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			respondError(w, http.StatusBadRequest, "unsupported_format", unsupported.Error())
			return
		}
		slog.Error("export failed", "format", req.Format, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to render export")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		slog.Error("failed to write export body", "error", err)
	}
}

// Analysis history handlers

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "storage_disabled", "analysis history requires a configured database")
		return
	}

	filters := models.ListFilters{
		CompanyName: r.URL.Query().Get("company"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Offset = n
		}
	}
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	records, err := s.repo.ListAnalyses(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list analyses", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list analyses")
		return
	}

	if records == nil {
		records = []*models.AnalysisRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "storage_disabled", "analysis history requires a configured database")
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.repo.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "analysis not found")
			return
		}
		slog.Error("failed to get analysis", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get analysis")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "storage_disabled", "analysis history requires a configured database")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteAnalysis(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "analysis not found")
			return
		}
		slog.Error("failed to delete analysis", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete analysis")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}
