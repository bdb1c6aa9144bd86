// Package generator produces question lists from interchangeable sources:
// the local question bank, an LLM and the Open Trivia DB.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

// Source names accepted in generation requests.
const (
	SourceBank   = "bank"
	SourceLLM    = "llm"
	SourceTrivia = "trivia"
)

var (
	ErrUnknownSource = errors.New("unknown generation source")
	ErrUnavailable   = errors.New("generation source is not configured")
	ErrNoJSONArray   = errors.New("AI yanıtı JSON formatında değil")
	ErrInvalidJSON   = errors.New("AI yanıtı geçerli bir soru listesi değil")
)

// UpstreamError wraps a failure reported by an external service.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Source, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Request describes what to generate. Empty Types means any type.
type Request struct {
	Level      model.Level
	Subject    string
	Count      int
	Types      []model.QuestionType
	Difficulty model.Difficulty
}

// Strategy is one way of producing questions.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]model.GeneratedQuestion, error)
}

// Registry looks strategies up by source name.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers each strategy under its Name.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Name()] = s
	}
	return r
}

// Get returns the strategy for source.
func (r *Registry) Get(source string) (Strategy, error) {
	s, ok := r.strategies[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return s, nil
}

// Sources lists the registered source names in order.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func assignIDs(qs []model.GeneratedQuestion) {
	for i := range qs {
		qs[i].ID = fmt.Sprintf("q%d", i+1)
	}
}

func hasType(types []model.QuestionType, t model.QuestionType) bool {
	if len(types) == 0 {
		return true
	}
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
