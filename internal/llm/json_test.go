package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflow/chronicle-go/internal/models"
)

func TestExtractJSON_Plain(t *testing.T) {
	var insights models.Insights
	err := extractJSON(`{"summary": "built the cache layer", "complexity_level": "medium"}`, &insights)
	require.NoError(t, err)
	assert.Equal(t, "built the cache layer", insights.Summary)
	assert.Equal(t, "medium", insights.ComplexityLevel)
}

func TestExtractJSON_CodeFence(t *testing.T) {
	text := "```json\n{\"summary\": \"ok\"}\n```"
	var insights models.Insights
	require.NoError(t, extractJSON(text, &insights))
	assert.Equal(t, "ok", insights.Summary)
}

func TestExtractJSON_ProseWrapped(t *testing.T) {
	text := `Here is the analysis you asked for:

{"summary": "refactoring week", "work_types": ["refactor", "test"]}

Let me know if you need more detail.`

	var insights models.Insights
	require.NoError(t, extractJSON(text, &insights))
	assert.Equal(t, "refactoring week", insights.Summary)
	assert.Equal(t, []string{"refactor", "test"}, insights.WorkTypes)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `Note: {"summary": "handles {nested} braces", "patterns": []}`
	var insights models.Insights
	require.NoError(t, extractJSON(text, &insights))
	assert.Equal(t, "handles {nested} braces", insights.Summary)
}

func TestExtractJSON_Array(t *testing.T) {
	text := `The categorization follows:
[{"index": 1, "category": "feature", "confidence": 0.9, "reason": "new endpoint"}]`

	var cats []categorization
	require.NoError(t, extractJSON(text, &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "feature", cats[0].Category)
	assert.InDelta(t, 0.9, cats[0].Confidence, 1e-9)
}

func TestExtractJSON_Invalid(t *testing.T) {
	var insights models.Insights
	assert.Error(t, extractJSON("no json here at all", &insights))
}

func TestApplyCategories(t *testing.T) {
	scored := []models.ScoredCommit{
		{Commit: models.Commit{Hash: "aaa"}},
		{Commit: models.Commit{Hash: "bbb"}},
	}

	applyCategories(scored, []categorization{
		{Index: 1, Category: "feature", Confidence: 0.95, Reason: "adds endpoint"},
		{Index: 2, Category: "", Confidence: 0.4},
		{Index: 99, Category: "docs"}, // out of range, ignored
	})

	assert.Equal(t, "feature", scored[0].Category)
	assert.InDelta(t, 0.95, scored[0].Confidence, 1e-9)
	assert.Equal(t, "adds endpoint", scored[0].CategoryReason)
	assert.Equal(t, "unknown", scored[1].Category)
}
