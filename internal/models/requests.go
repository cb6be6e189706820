package models

import (
	"time"
)

// Idea count bounds for one generation request
const (
	MinIdeas     = 2
	MaxIdeas     = 12
	DefaultIdeas = 4
)

// ClampIdeaCount normalizes a requested idea count to the supported range.
// Zero means "use the default".
func ClampIdeaCount(n int) int {
	if n == 0 {
		return DefaultIdeas
	}
	if n < MinIdeas {
		return MinIdeas
	}
	if n > MaxIdeas {
		return MaxIdeas
	}
	return n
}

// AnalyzeCompanyRequest is the body of POST /api/v1/companies/analyze-company
type AnalyzeCompanyRequest struct {
	CompanyName    string   `json:"company_name"`
	CompanyWebsite string   `json:"company_website,omitempty"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
	UserSkills     []string `json:"user_skills,omitempty"`
	TotalIdeas     int      `json:"total_ideas,omitempty"`
}

// AnalyzeCompanyResponse carries the full pipeline output for one request
type AnalyzeCompanyResponse struct {
	CompanyProfile    CompanyProfile         `json:"company_profile"`
	Challenges        []EngineeringChallenge `json:"challenges"`
	ProjectIdeas      []ProjectIdea          `json:"project_ideas"`
	AnalysisTimestamp time.Time              `json:"analysis_timestamp"`
}

// GenerateProjectsRequest is the body of POST /api/v1/projects/generate
type GenerateProjectsRequest struct {
	CompanyProfile CompanyProfile         `json:"company_profile"`
	Challenges     []EngineeringChallenge `json:"challenges"`
	UserSkills     []string               `json:"user_skills,omitempty"`
	TotalIdeas     int                    `json:"total_ideas,omitempty"`
}

// GenerateProjectsResponse is the result of a standalone generation call
type GenerateProjectsResponse struct {
	Projects            []ProjectIdea `json:"projects"`
	TotalProjects       int           `json:"total_projects"`
	GenerationTimestamp time.Time     `json:"generation_timestamp"`
}

// RefineProjectRequest is the body of POST /api/v1/projects/refine
type RefineProjectRequest struct {
	Project     ProjectIdea          `json:"project"`
	CompanyName string               `json:"company_name"`
	Challenge   EngineeringChallenge `json:"challenge"`
}

// PreviewTokensRequest is the body of POST /api/v1/companies/preview-tokens.
// It is a partial analysis request: no model call is made.
type PreviewTokensRequest struct {
	CompanyName    string `json:"company_name,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// PreviewTokensResponse reports the estimated cost of the would-be prompt
type PreviewTokensResponse struct {
	EstimatedTokens int    `json:"estimated_tokens"`
	HighUsage       bool   `json:"high_usage"`
	CharCount       int    `json:"char_count"`
	WordCount       int    `json:"word_count"`
	WebsiteSummary  string `json:"website_summary,omitempty"`
}

// ExportRequest is the body of POST /api/v1/projects/export
type ExportRequest struct {
	Projects []ProjectIdea `json:"projects"`
	Format   string        `json:"format"`
}
