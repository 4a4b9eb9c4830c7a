package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"PapersDigest/internal/domain"
)

var (
	ErrNoJSON        = fmt.Errorf("%w: no JSON span in model response", domain.ErrAnalysis)
	ErrMalformedJSON = fmt.Errorf("%w: malformed JSON in model response", domain.ErrAnalysis)
)

// record is the per-paper shape the prompts ask the model for.
type record struct {
	TitleKo      string   `json:"titleKo"`
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"keyPoints"`
	Significance string   `json:"significance"`
	EliFor5      string   `json:"eliFor5"`
}

// Span locates the text from the first open delimiter to the last close delimiter.
func Span(text string, open, close byte) (string, error) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func parseObject(text string) (record, error) {
	span, err := Span(text, '{', '}')
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(span), &rec); err != nil {
		return record{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return rec, nil
}

func parseArray(text string) ([]record, error) {
	span, err := Span(text, '[', ']')
	if err != nil {
		return nil, err
	}
	var recs []record
	if err := json.Unmarshal([]byte(span), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return recs, nil
}
