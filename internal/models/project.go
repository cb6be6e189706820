package models

import (
	"time"
)

// Difficulty grades how demanding a project idea is
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ParseDifficulty maps a free-form model answer to a known difficulty,
// falling back to intermediate
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s)
	}
	return DifficultyIntermediate
}

// ProjectIdea is a generated portfolio-project suggestion tied to one
// engineering challenge from the same request. The challenge reference is
// a loose title/ID back-reference, not a foreign key.
type ProjectIdea struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	TechStack         []string   `json:"tech_stack"`
	DemoHook          string     `json:"demo_hook,omitempty"`
	Difficulty        Difficulty `json:"difficulty"`
	EstimatedDuration string     `json:"estimated_duration,omitempty"`
	ChallengeID       string     `json:"challenge_id,omitempty"`
	ChallengeTitle    string     `json:"challenge_title,omitempty"`
	CompanyName       string     `json:"company_name,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ListFilters narrows an analysis history listing
type ListFilters struct {
	CompanyName string
	Limit       int
	Offset      int
}

// AnalysisRecord is a persisted snapshot of one completed analysis
type AnalysisRecord struct {
	ID          string                 `json:"id"`
	CompanyName string                 `json:"company_name"`
	Profile     CompanyProfile         `json:"company_profile"`
	Challenges  []EngineeringChallenge `json:"challenges"`
	Ideas       []ProjectIdea          `json:"project_ideas"`
	CreatedAt   time.Time              `json:"created_at"`
}
