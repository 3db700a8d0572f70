package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

func TestParseDraft_FencedJSON(t *testing.T) {
	content := "Here is my recommendation:\n```json\n" +
		`{"recommendedAction":"Escalate to account manager","confidence":0.72,"tone":"Firm","timing":"escalate",` +
		`"reasoning":"Customer said \"we {never} received it\"","draftEmail":{"subject":"","body":""}}` +
		"\n```\nLet me know."

	draft, err := parseDraft(content)
	require.NoError(t, err)

	assert.Equal(t, "Escalate to account manager", draft.RecommendedAction)
	assert.InDelta(t, 72, draft.Confidence, 1e-9)
	assert.Equal(t, entity.ToneFirm, draft.Tone)
	assert.Equal(t, entity.TimingEscalate, draft.Timing)
	assert.Nil(t, draft.DraftEmail)
	assert.NotNil(t, draft.Alternatives)
	assert.Contains(t, draft.Reasoning, "{never}")
}

func TestParseDraft_DropsAlternativesWithoutApproach(t *testing.T) {
	draft, err := parseDraft(`{"recommendedAction":"Call","confidence":140,"tone":"standard","timing":"next-week",` +
		`"alternatives":[{"approach":"","confidence":50},{"approach":"Payment plan","confidence":45}]}`)
	require.NoError(t, err)

	assert.InDelta(t, 100, draft.Confidence, 1e-9)
	require.Len(t, draft.Alternatives, 1)
	assert.Equal(t, "Payment plan", draft.Alternatives[0].Approach)
}

func TestParseDraft_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no object", "send a reminder"},
		{"unterminated", `{"recommendedAction":"Call"`},
		{"missing tone", `{"recommendedAction":"Call","timing":"immediate"}`},
		{"bad type", `{"recommendedAction":5,"tone":"firm","timing":"immediate"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraft(tt.content)
			assert.ErrorIs(t, err, ErrUnparseableDraft)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, extractJSON(`prefix {"a":{"b":1}} suffix {"c":2}`))
	assert.Equal(t, `{"s":"}"}`, extractJSON(`{"s":"}"}`))
	assert.Equal(t, "", extractJSON(`{"open": true`))
	assert.Equal(t, "", extractJSON("none"))
}
