// Package projects turns an analyzed company into concrete portfolio
// project ideas, one model call per generation or refinement.
package projects

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

// GenerationFailedError indicates the model produced no usable project
// ideas for a company.
type GenerationFailedError struct {
	CompanyName string
	Err         error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("project generation failed for %q: %v", e.CompanyName, e.Err)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Err
}

// Generator produces and refines project ideas from a company profile
type Generator struct {
	llm     llm.Completer
	prompts *prompts.Store
}

// NewGenerator wires the generator to a model client and prompt store
func NewGenerator(completer llm.Completer, store *prompts.Store) *Generator {
	return &Generator{
		llm:     completer,
		prompts: store,
	}
}

// Generate asks the model for project ideas addressing the company's
// challenges. Fewer ideas than requested is acceptable as long as at least
// one parses; zero usable ideas is a GenerationFailedError. Model failures
// keep their classification and are returned unchanged.
func (g *Generator) Generate(ctx context.Context, req models.GenerateProjectsRequest) ([]models.ProjectIdea, error) {
	company := strings.TrimSpace(req.CompanyProfile.Name)
	if company == "" {
		return nil, &GenerationFailedError{Err: fmt.Errorf("company profile is required")}
	}
	if len(req.Challenges) == 0 {
		return nil, &GenerationFailedError{CompanyName: company, Err: fmt.Errorf("at least one engineering challenge is required")}
	}

	total := models.ClampIdeaCount(req.TotalIdeas)

	prompt, err := g.prompts.Render(prompts.ProjectGeneration, prompts.GenerationData{
		CompanyName:    company,
		ProfileSummary: profileSummary(req.CompanyProfile),
		ChallengesText: challengesText(req.Challenges),
		SkillsText:     strings.Join(req.UserSkills, ", "),
		TotalIdeas:     total,
	})
	if err != nil {
		return nil, &GenerationFailedError{CompanyName: company, Err: err}
	}

	resp, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parser.Decode[[]ideaPayload](resp.Content)
	if err != nil {
		return nil, &GenerationFailedError{
			CompanyName: company,
			Err:         parser.NewMalformedResponseError("could not extract project ideas JSON", err),
		}
	}

	ideas := make([]models.ProjectIdea, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
			continue
		}
		ideas = append(ideas, p.toModel(company, req.Challenges))
		if len(ideas) == total {
			break
		}
	}

	if len(ideas) == 0 {
		return nil, &GenerationFailedError{
			CompanyName: company,
			Err:         parser.NewMalformedResponseError("no usable project ideas in response", nil, "title", "description"),
		}
	}

	slog.Info("project generation completed",
		"company", company,
		"requested", total,
		"generated", len(ideas),
	)

	return ideas, nil
}

// Refine reworks one project idea against its challenge, returning a more
// detailed replacement.
func (g *Generator) Refine(ctx context.Context, req models.RefineProjectRequest) (*models.ProjectIdea, error) {
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		company = req.Project.CompanyName
	}
	if strings.TrimSpace(req.Project.Title) == "" {
		return nil, &GenerationFailedError{CompanyName: company, Err: fmt.Errorf("project title is required")}
	}

	prompt, err := g.prompts.Render(prompts.ProjectRefinement, prompts.RefinementData{
		CompanyName:          company,
		ProjectTitle:         req.Project.Title,
		ProjectDescription:   req.Project.Description,
		ChallengeTitle:       req.Challenge.Title,
		ChallengeDescription: req.Challenge.Description,
	})
	if err != nil {
		return nil, &GenerationFailedError{CompanyName: company, Err: err}
	}

	resp, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parser.Decode[ideaPayload](resp.Content)
	if err != nil {
		return nil, &GenerationFailedError{
			CompanyName: company,
			Err:         parser.NewMalformedResponseError("could not extract refined project JSON", err),
		}
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Description) == "" {
		return nil, &GenerationFailedError{
			CompanyName: company,
			Err:         parser.NewMalformedResponseError("refined project missing required fields", nil, "title", "description"),
		}
	}

	refined := payload.toModel(company, []models.EngineeringChallenge{req.Challenge})

	// The refinement stays attached to the original challenge even when
	// the model drops the back-reference.
	if refined.ChallengeID == "" {
		refined.ChallengeID = req.Project.ChallengeID
	}
	if refined.ChallengeTitle == "" {
		refined.ChallengeTitle = req.Project.ChallengeTitle
	}

	slog.Info("project refinement completed", "company", company, "project", refined.Title)

	return &refined, nil
}

// ideaPayload is the wire shape for one generated project idea
type ideaPayload struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	TechStack         []string `json:"tech_stack"`
	DemoHook          string   `json:"demo_hook"`
	Difficulty        string   `json:"difficulty"`
	EstimatedDuration string   `json:"estimated_duration"`
	ChallengeID       string   `json:"challenge_id"`
	ChallengeTitle    string   `json:"challenge_title"`
}

// toModel converts one wire idea to the domain record, resolving the
// challenge back-reference against the request's challenges where possible.
func (p ideaPayload) toModel(company string, challenges []models.EngineeringChallenge) models.ProjectIdea {
	idea := models.ProjectIdea{
		Title:             p.Title,
		Description:       p.Description,
		TechStack:         p.TechStack,
		DemoHook:          p.DemoHook,
		Difficulty:        models.ParseDifficulty(strings.ToLower(strings.TrimSpace(p.Difficulty))),
		EstimatedDuration: p.EstimatedDuration,
		ChallengeID:       p.ChallengeID,
		ChallengeTitle:    p.ChallengeTitle,
		CompanyName:       company,
		CreatedAt:         time.Now().UTC(),
	}

	for _, c := range challenges {
		if idea.ChallengeID != "" && idea.ChallengeID == c.ID {
			if idea.ChallengeTitle == "" {
				idea.ChallengeTitle = c.Title
			}
			return idea
		}
		if idea.ChallengeID == "" && idea.ChallengeTitle != "" && strings.EqualFold(idea.ChallengeTitle, c.Title) {
			idea.ChallengeID = c.ID
			return idea
		}
	}

	return idea
}

// profileSummary flattens a profile into a compact one-paragraph context
// block for the generation prompt.
func profileSummary(p models.CompanyProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Industry: %s. Size: %s.", p.Industry, p.Size)
	if p.Description != "" {
		fmt.Fprintf(&b, " %s", p.Description)
	}
	if p.BusinessFocus != "" {
		fmt.Fprintf(&b, " Business focus: %s.", p.BusinessFocus)
	}
	if stack := p.TechStack.Flatten(); len(stack) > 0 {
		fmt.Fprintf(&b, " Known tech stack: %s.", strings.Join(stack, ", "))
	}
	if len(p.RecentHighlights) > 0 {
		fmt.Fprintf(&b, " Recent highlights: %s.", strings.Join(p.RecentHighlights, "; "))
	}
	return b.String()
}

// challengesText renders the challenges as a numbered list for the prompt
func challengesText(challenges []models.EngineeringChallenge) string {
	var b strings.Builder
	for i, c := range challenges {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, c.ID, c.Title, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
