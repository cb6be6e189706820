package prompts

// AnalysisData parameterizes the company-analysis template
type AnalysisData struct {
	CompanyName    string
	AdditionalInfo string
	WebsiteSummary string
	ChallengeCount int
}

// GenerationData parameterizes the project-generation template
type GenerationData struct {
	CompanyName    string
	ProfileSummary string
	ChallengesText string
	SkillsText     string
	TotalIdeas     int
}

// RefinementData parameterizes the project-refinement template
type RefinementData struct {
	CompanyName          string
	ProjectTitle         string
	ProjectDescription   string
	ChallengeTitle       string
	ChallengeDescription string
}

// builtinTemplates holds the default prompt text for each operation. The
// JSON shapes embedded here are the contract the response parser validates
// against.
var builtinTemplates = map[string]string{
	CompanyAnalysis: companyAnalysisTemplate,

	ProjectGeneration: projectGenerationTemplate,

	ProjectRefinement: projectRefinementTemplate,
}

const companyAnalysisTemplate = `Analyze the company "{{.CompanyName}}" and provide the following information in JSON format:
{
    "name": "Company name",
    "industry": "technology/finance/healthcare/ecommerce/education/entertainment/transportation/real_estate/manufacturing/consulting/other",
    "size": "startup/scaleup/enterprise/unknown",
    "description": "Brief company description",
    "business_focus": "Main business focus and primary revenue stream",
    "recent_highlights": ["notable recent development"],
    "tech_stack": {
        "frontend": ["tech1", "tech2"],
        "backend": ["tech1", "tech2"],
        "database": ["db1", "db2"],
        "cloud": ["aws", "gcp", "azure"],
        "devops": ["tool1"],
        "ai_ml": ["tech1"],
        "mobile": ["tech1"],
        "other": ["tech1"]
    },
    "engineering_challenges": [
        {
            "title": "Challenge title",
            "description": "Detailed description",
            "difficulty": "beginner/intermediate/advanced",
            "tech_areas": ["area1", "area2"]
        }
    ]
}
{{- if .WebsiteSummary}}

Website content extracted from the company's site:
{{.WebsiteSummary}}
{{- end}}
{{- if .AdditionalInfo}}

Additional context provided by the user:
{{.AdditionalInfo}}
{{- end}}

Important:
- Use lowercase for industry (e.g., "technology" not "Technology") and use the exact size values listed above.
- Provide exactly {{.ChallengeCount}} engineering challenges.
- Return ONLY the JSON object, no markdown formatting, no code blocks, no additional text.
- Focus on real engineering challenges that this company might face.`

const projectGenerationTemplate = `Generate {{.TotalIdeas}} project ideas for {{.CompanyName}} based on these engineering challenges:

{{.ChallengesText}}
{{- if .SkillsText}}

Candidate skills to build on: {{.SkillsText}}
{{- end}}
{{- if .ProfileSummary}}

Company context:
{{.ProfileSummary}}
{{- end}}

Return as JSON array:
[
    {
        "title": "Project title",
        "description": "Detailed project description",
        "difficulty": "beginner/intermediate/advanced",
        "estimated_duration": "2-3 months",
        "tech_stack": ["tech1", "tech2"],
        "demo_hook": "What to demonstrate in interview",
        "challenge_id": "challenge_1",
        "challenge_title": "Original challenge title"
    }
]

Important: Return ONLY the JSON array, no markdown formatting, no code blocks, no additional text.
Make projects practical and achievable, and tie each project to one of the listed challenges via challenge_id and challenge_title.`

const projectRefinementTemplate = `Refine this project idea for {{.CompanyName}}:

Current project: {{.ProjectTitle}}
Description: {{.ProjectDescription}}

Challenge context: {{.ChallengeTitle}} - {{.ChallengeDescription}}

Provide an improved version with:
- More detailed technical implementation
- Specific technologies to use
- Step-by-step development plan
- Success metrics

Return as JSON with the same structure as the original project.
Important: Return ONLY the JSON object, no markdown formatting, no code blocks, no additional text.`
