package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNarrativeFormats_EachHasPrompt(t *testing.T) {
	assert.Len(t, formatPrompts, len(NarrativeFormats))
	for _, format := range NarrativeFormats {
		assert.Contains(t, formatPrompts, format)
	}
}
