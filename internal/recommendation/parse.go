package recommendation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// draftPayload is the structured object a drafting capability returns
type draftPayload struct {
	RecommendedAction string               `json:"recommendedAction"`
	Confidence        float64              `json:"confidence"`
	Tone              entity.Tone          `json:"tone"`
	Timing            entity.Timing        `json:"timing"`
	DraftEmail        *entity.DraftEmail   `json:"draftEmail,omitempty"`
	Reasoning         string               `json:"reasoning"`
	Alternatives      []entity.Alternative `json:"alternatives,omitempty"`
}

// parseDraft decodes and validates capability output. Models sometimes wrap the
// object in prose or code fences, so the first balanced JSON object is tried as well.
func parseDraft(content string) (*draftPayload, error) {
	var payload draftPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("%w: no JSON object in response", ErrUnparseableDraft)
		}
		payload = draftPayload{}
		if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparseableDraft, err)
		}
	}

	if err := payload.normalize(); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *draftPayload) normalize() error {
	p.RecommendedAction = strings.TrimSpace(p.RecommendedAction)
	if p.RecommendedAction == "" {
		return fmt.Errorf("%w: empty recommendedAction", ErrUnparseableDraft)
	}

	p.Tone = entity.Tone(strings.ToLower(strings.TrimSpace(string(p.Tone))))
	if !p.Tone.IsValid() {
		return fmt.Errorf("%w: unknown tone %q", ErrUnparseableDraft, p.Tone)
	}

	p.Timing = entity.Timing(strings.ToLower(strings.TrimSpace(string(p.Timing))))
	if !p.Timing.IsValid() {
		return fmt.Errorf("%w: unknown timing %q", ErrUnparseableDraft, p.Timing)
	}

	p.Confidence = percent(p.Confidence)

	if p.DraftEmail != nil && strings.TrimSpace(p.DraftEmail.Subject) == "" && strings.TrimSpace(p.DraftEmail.Body) == "" {
		p.DraftEmail = nil
	}

	alternatives := make([]entity.Alternative, 0, len(p.Alternatives))
	for _, alt := range p.Alternatives {
		if strings.TrimSpace(alt.Approach) == "" {
			continue
		}
		alt.Confidence = percent(alt.Confidence)
		alternatives = append(alternatives, alt)
	}
	p.Alternatives = alternatives

	return nil
}

// percent accepts either a 0-1 fraction or a 0-100 percentage and returns a percentage
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		v *= 100
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// extractJSON returns the first balanced JSON object in content
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

// findJSONEnd returns the index just past the brace that closes the object at start
func findJSONEnd(content string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		c := content[i]

		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
