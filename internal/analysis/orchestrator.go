// Package analysis orchestrates one company-analysis request: optional
// website extraction, prompt rendering, a single model call, and response
// parsing into a CompanyProfile with engineering challenges.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devtrail/idea-engine/internal/llm"
	"github.com/devtrail/idea-engine/internal/models"
	"github.com/devtrail/idea-engine/internal/parser"
	"github.com/devtrail/idea-engine/internal/prompts"
)

// defaultChallengeCount is how many challenges the prompt asks for. Three
// per company is a convention, not an enforced invariant.
const defaultChallengeCount = 3

// ContentExtractor supplies website context for the prompt. Extraction
// failures are non-fatal: the pipeline continues without website content.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// FailedError indicates the analysis could not produce a valid company
// profile. It propagates verbatim to the HTTP layer.
type FailedError struct {
	CompanyName string
	Err         error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("analysis failed for %q: %v", e.CompanyName, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one analysis call
type Result struct {
	Profile        models.CompanyProfile
	Challenges     []models.EngineeringChallenge
	WebsiteSummary string
}

// Service composes the extractor, prompt store, model client, and parser
type Service struct {
	llm       llm.Completer
	prompts   *prompts.Store
	extractor ContentExtractor
}

// NewService creates an analysis orchestrator. extractor may be nil when
// website context is not wanted.
func NewService(completer llm.Completer, store *prompts.Store, extractor ContentExtractor) *Service {
	return &Service{
		llm:       completer,
		prompts:   store,
		extractor: extractor,
	}
}

// Analyze produces a company profile and engineering challenges for one
// request. A website fetch failure is logged and absorbed; model and parse
// failures are fatal to the request.
func (s *Service) Analyze(ctx context.Context, req models.AnalyzeCompanyRequest) (*Result, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, &FailedError{CompanyName: req.CompanyName, Err: fmt.Errorf("company name is required")}
	}

	summary := s.WebsiteSummary(ctx, req.CompanyWebsite)
	return s.AnalyzeWithSummary(ctx, req, summary)
}

// WebsiteSummary fetches and summarizes the company website. It never
// fails the pipeline: on any error it returns an empty summary.
func (s *Service) WebsiteSummary(ctx context.Context, url string) string {
	if url == "" || s.extractor == nil {
		return ""
	}

	summary, err := s.extractor.Extract(ctx, url)
	if err != nil {
		slog.Warn("website extraction failed, continuing without website context",
			"url", url,
			"error", err,
		)
		return ""
	}
	return summary
}

// AnalyzeWithSummary runs the model step of the analysis with an already
// fetched website summary (possibly empty)
func (s *Service) AnalyzeWithSummary(ctx context.Context, req models.AnalyzeCompanyRequest, websiteSummary string) (*Result, error) {
	prompt, err := s.prompts.Render(prompts.CompanyAnalysis, prompts.AnalysisData{
		CompanyName:    req.CompanyName,
		AdditionalInfo: req.AdditionalInfo,
		WebsiteSummary: websiteSummary,
		ChallengeCount: defaultChallengeCount,
	})
	if err != nil {
		return nil, &FailedError{CompanyName: req.CompanyName, Err: err}
	}

	resp, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		// Model failures keep their classification for status mapping.
		return nil, err
	}

	payload, err := parser.Decode[analysisPayload](resp.Content)
	if err != nil {
		return nil, &FailedError{
			CompanyName: req.CompanyName,
			Err:         parser.NewMalformedResponseError("could not extract analysis JSON", err),
		}
	}

	if missing := payload.missingFields(); len(missing) > 0 {
		return nil, &FailedError{
			CompanyName: req.CompanyName,
			Err:         parser.NewMalformedResponseError("required fields missing or empty", nil, missing...),
		}
	}

	profile, challenges := payload.toModel(req.CompanyName)

	slog.Info("company analysis completed",
		"company", req.CompanyName,
		"industry", profile.Industry,
		"challenges", len(challenges),
		"website_context", websiteSummary != "",
	)

	return &Result{
		Profile:        profile,
		Challenges:     challenges,
		WebsiteSummary: websiteSummary,
	}, nil
}

// analysisPayload is the wire shape the model is prompted to return
type analysisPayload struct {
	Name                  string             `json:"name"`
	Industry              string             `json:"industry"`
	Size                  string             `json:"size"`
	Description           string             `json:"description"`
	BusinessFocus         string             `json:"business_focus"`
	RecentHighlights      []string           `json:"recent_highlights"`
	TechStack             models.TechStack   `json:"tech_stack"`
	EngineeringChallenges []challengePayload `json:"engineering_challenges"`
}

type challengePayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	TechAreas   []string `json:"tech_areas"`
}

// missingFields validates the payload against the expected shape, returning
// the names of fields that failed
func (p analysisPayload) missingFields() []string {
	var missing []string
	if strings.TrimSpace(p.Description) == "" {
		missing = append(missing, "description")
	}

	valid := 0
	for _, c := range p.EngineeringChallenges {
		if strings.TrimSpace(c.Title) != "" && strings.TrimSpace(c.Description) != "" {
			valid++
		}
	}
	if valid == 0 {
		missing = append(missing, "engineering_challenges")
	}

	return missing
}

// toModel converts the wire payload into domain records. The requested
// company name wins over whatever the model echoed back.
func (p analysisPayload) toModel(companyName string) (models.CompanyProfile, []models.EngineeringChallenge) {
	profile := models.CompanyProfile{
		Name:             companyName,
		Industry:         models.ParseIndustry(strings.ToLower(strings.TrimSpace(p.Industry))),
		Size:             models.ParseSize(strings.ToLower(strings.TrimSpace(p.Size))),
		Description:      p.Description,
		BusinessFocus:    p.BusinessFocus,
		TechStack:        p.TechStack,
		RecentHighlights: p.RecentHighlights,
		CreatedAt:        time.Now().UTC(),
	}

	var challenges []models.EngineeringChallenge
	for i, c := range p.EngineeringChallenges {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Description) == "" {
			continue
		}

		id := c.ID
		if id == "" {
			id = fmt.Sprintf("challenge_%d", i+1)
		}

		challenges = append(challenges, models.EngineeringChallenge{
			ID:          id,
			Title:       c.Title,
			Description: c.Description,
			Difficulty:  string(models.ParseDifficulty(strings.ToLower(c.Difficulty))),
			TechAreas:   c.TechAreas,
		})
	}

	return profile, challenges
}
