package models

import (
	"time"
)

// IndustryType categorizes a company's primary industry
type IndustryType string

const (
	IndustryTechnology     IndustryType = "technology"
	IndustryFinance        IndustryType = "finance"
	IndustryHealthcare     IndustryType = "healthcare"
	IndustryEcommerce      IndustryType = "ecommerce"
	IndustryEducation      IndustryType = "education"
	IndustryEntertainment  IndustryType = "entertainment"
	IndustryTransportation IndustryType = "transportation"
	IndustryRealEstate     IndustryType = "real_estate"
	IndustryManufacturing  IndustryType = "manufacturing"
	IndustryConsulting     IndustryType = "consulting"
	IndustryOther          IndustryType = "other"
)

// ParseIndustry maps a free-form model answer to a known industry,
// falling back to IndustryOther
func ParseIndustry(s string) IndustryType {
	switch IndustryType(s) {
	case IndustryTechnology, IndustryFinance, IndustryHealthcare, IndustryEcommerce,
		IndustryEducation, IndustryEntertainment, IndustryTransportation,
		IndustryRealEstate, IndustryManufacturing, IndustryConsulting:
		return IndustryType(s)
	}
	return IndustryOther
}

// CompanySize buckets a company by scale
type CompanySize string

const (
	SizeStartup    CompanySize = "startup"
	SizeScaleup    CompanySize = "scaleup"
	SizeEnterprise CompanySize = "enterprise"
	SizeUnknown    CompanySize = "unknown"
)

// ParseSize maps a free-form model answer to a known size bucket
func ParseSize(s string) CompanySize {
	switch CompanySize(s) {
	case SizeStartup, SizeScaleup, SizeEnterprise:
		return CompanySize(s)
	}
	return SizeUnknown
}

// TechStack groups a company's technologies by category
type TechStack struct {
	Frontend []string `json:"frontend,omitempty"`
	Backend  []string `json:"backend,omitempty"`
	Database []string `json:"database,omitempty"`
	Cloud    []string `json:"cloud,omitempty"`
	DevOps   []string `json:"devops,omitempty"`
	AIML     []string `json:"ai_ml,omitempty"`
	Mobile   []string `json:"mobile,omitempty"`
	Other    []string `json:"other,omitempty"`
}

// Flatten returns all technologies across categories in a stable order
func (t TechStack) Flatten() []string {
	var all []string
	for _, group := range [][]string{
		t.Frontend, t.Backend, t.Database, t.Cloud, t.DevOps, t.AIML, t.Mobile, t.Other,
	} {
		all = append(all, group...)
	}
	return all
}

// IsEmpty reports whether no technologies were identified
func (t TechStack) IsEmpty() bool {
	return len(t.Flatten()) == 0
}

// CompanyProfile is the structured summary produced by one analysis request.
// Profiles are immutable after creation and live for one request/response
// cycle unless explicitly cached or persisted.
type CompanyProfile struct {
	Name             string       `json:"name"`
	Industry         IndustryType `json:"industry"`
	Size             CompanySize  `json:"size"`
	Description      string       `json:"description"`
	BusinessFocus    string       `json:"business_focus"`
	TechStack        TechStack    `json:"tech_stack"`
	RecentHighlights []string     `json:"recent_highlights,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// EngineeringChallenge is a technical problem the company plausibly faces,
// generated alongside the profile and used as project-generation context
type EngineeringChallenge struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty,omitempty"`
	TechAreas   []string `json:"tech_areas,omitempty"`
}
