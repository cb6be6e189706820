// Package export renders generated project ideas into downloadable
// formats.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devtrail/idea-engine/internal/models"
)

// Supported export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// UnsupportedFormatError names a format the exporter cannot produce
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q", e.Format)
}

// Result is one rendered export document
type Result struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Render produces the export document for the given format. Format
// matching is case-insensitive; an empty format defaults to JSON.
func Render(projects []models.ProjectIdea, format string) (*Result, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return renderJSON(projects)
	case FormatCSV:
		return renderCSV(projects)
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

func renderJSON(projects []models.ProjectIdea) (*Result, error) {
	body, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding projects: %w", err)
	}
	return &Result{
		ContentType: "application/json",
		Filename:    "project-ideas.json",
		Body:        body,
	}, nil
}

var csvHeader = []string{
	"title", "description", "difficulty", "estimated_duration",
	"tech_stack", "demo_hook", "challenge_id", "challenge_title",
	"company_name", "created_at",
}

func renderCSV(projects []models.ProjectIdea) (*Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range projects {
		row := []string{
			p.Title,
			p.Description,
			string(p.Difficulty),
			p.EstimatedDuration,
			strings.Join(p.TechStack, "; "),
			p.DemoHook,
			p.ChallengeID,
			p.ChallengeTitle,
			p.CompanyName,
			p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return &Result{
		ContentType: "text/csv",
		Filename:    "project-ideas.csv",
		Body:        buf.Bytes(),
	}, nil
}
