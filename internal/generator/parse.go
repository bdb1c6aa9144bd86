package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

// aiQuestion is the element shape the prompts ask the model for.
type aiQuestion struct {
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer answerText `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
}

// answerText accepts a string, number or boolean; models answer true/false
// questions with bare booleans often enough.
type answerText string

func (a *answerText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = answerText(s)
		return nil
	}
	switch string(b) {
	case "null":
		*a = ""
	case "true":
		*a = "Doğru"
	case "false":
		*a = "Yanlış"
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return fmt.Errorf("unsupported answer value %s", b)
		}
		*a = answerText(b)
	}
	return nil
}

// ParseQuestionArray extracts the text between the first '[' and the last ']'
// of a model response and decodes it as a question list.
func ParseQuestionArray(content string) ([]model.GeneratedQuestion, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, ErrNoJSONArray
	}

	var items []aiQuestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	out := make([]model.GeneratedQuestion, len(items))
	for i, it := range items {
		opts := it.Options
		if opts == nil {
			opts = []string{}
		}
		out[i] = model.GeneratedQuestion{
			Text:          strings.TrimSpace(it.Question),
			Options:       opts,
			CorrectAnswer: string(it.CorrectAnswer),
			Explanation:   it.Explanation,
		}
	}
	assignIDs(out)
	return out, nil
}
