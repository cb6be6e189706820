package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/idea-engine/internal/models"
)

func sampleProjects() []models.ProjectIdea {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.ProjectIdea{
		{
			Title:             "Event Replay Console",
			Description:       "Replays production event streams, with \"quoted\" text and, commas.",
			TechStack:         []string{"Go", "Kafka"},
			DemoHook:          "Replay a traffic spike",
			Difficulty:        models.DifficultyAdvanced,
			EstimatedDuration: "3 weeks",
			ChallengeID:       "challenge_1",
			ChallengeTitle:    "Streaming ingestion",
			CompanyName:       "Acme Analytics",
			CreatedAt:         created,
		},
		{
			Title:       "Query Heatmap",
			Description: "Visualizes slow queries.",
			Difficulty:  models.DifficultyIntermediate,
			CompanyName: "Acme Analytics",
			CreatedAt:   created,
		},
	}
}

func TestRenderJSON(t *testing.T) {
	result, err := Render(sampleProjects(), "json")
	require.NoError(t, err)

	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, "project-ideas.json", result.Filename)

	var decoded []models.ProjectIdea
	require.NoError(t, json.Unmarshal(result.Body, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Event Replay Console", decoded[0].Title)
}

func TestRenderJSONIsDefault(t *testing.T) {
	result, err := Render(sampleProjects(), "")
	require.NoError(t, err)
	assert.Equal(t, "application/json", result.ContentType)
}

func TestRenderCSV(t *testing.T) {
	result, err := Render(sampleProjects(), "CSV")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "project-ideas.csv", result.Filename)

	records, err := csv.NewReader(strings.NewReader(string(result.Body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Event Replay Console", records[1][0])
	assert.Equal(t, "Go; Kafka", records[1][4])
	assert.Contains(t, records[1][1], `"quoted"`)
	assert.Equal(t, "2024-05-01T12:00:00Z", records[2][9])
}

func TestRenderCSVEmpty(t *testing.T) {
	result, err := Render(nil, "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(result.Body))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(sampleProjects(), "xlsx")

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "xlsx", unsupported.Format)
}
