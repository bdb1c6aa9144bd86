package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

// Completer is the chat completion capability the LLM strategies need.
type Completer interface {
	IsAvailable() bool
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

const (
	generateSystemPrompt = "Sen bir eğitim uzmanısın ve kaliteli sınav soruları oluşturuyorsun."
	generateTemperature  = 0.7

	extractSystemPrompt = "Sen bir eğitim uzmanısın ve metinlerden sınav sorularını ve cevaplarını ayıklıyorsun."
	extractTemperature  = 0.3
)

func generatePrompt(level model.Level, subject string, count int, qtype model.QuestionType) string {
	return fmt.Sprintf(`%s seviyesinde %s konusu için %d adet %s tipi soru oluştur.

Her soru için şu formatı kullan:
{
  "question": "Soru metni",
  "options": ["A) Seçenek", "B) Seçenek", ...] (çoktan seçmeli sorular için),
  "correctAnswer": "Doğru cevap",
  "explanation": "Açıklama"
}

Tüm soruları bir JSON dizisi olarak döndür.`, level, subject, count, qtype)
}

func extractPrompt(text string) string {
	return fmt.Sprintf(`Aşağıdaki metinden sınav sorularını ve cevaplarını ayıkla:

%s

Her soru için şu formatı kullan:
{
  "question": "Soru metni",
  "options": ["A) Seçenek", "B) Seçenek", ...] (çoktan seçmeli sorular için),
  "correctAnswer": "Doğru cevap"
}

Tüm soruları bir JSON dizisi olarak döndür.`, text)
}

// LLMStrategy asks a chat model for questions.
type LLMStrategy struct {
	client Completer
}

// NewLLMStrategy creates an LLMStrategy.
func NewLLMStrategy(client Completer) *LLMStrategy {
	return &LLMStrategy{client: client}
}

func (s *LLMStrategy) Name() string { return SourceLLM }

// Generate requests req.Count questions of the first requested type
// (multiple choice when none is given). Every returned question carries that type.
func (s *LLMStrategy) Generate(ctx context.Context, req Request) ([]model.GeneratedQuestion, error) {
	if !s.client.IsAvailable() {
		return nil, ErrUnavailable
	}

	qtype := model.QuestionTypeMultipleChoice
	if len(req.Types) > 0 {
		qtype = req.Types[0]
	}

	content, err := s.client.Complete(ctx, generateSystemPrompt,
		generatePrompt(req.Level, req.Subject, req.Count, qtype), generateTemperature)
	if err != nil {
		return nil, &UpstreamError{Source: SourceLLM, Err: err}
	}

	qs, err := ParseQuestionArray(content)
	if err != nil {
		return nil, err
	}
	for i := range qs {
		qs[i].Type = qtype
	}
	return qs, nil
}

// Extractor segments free text, usually OCR output, into questions.
type Extractor struct {
	client Completer
}

// NewExtractor creates an Extractor.
func NewExtractor(client Completer) *Extractor {
	return &Extractor{client: client}
}

// IsAvailable reports whether the underlying model is configured.
func (e *Extractor) IsAvailable() bool { return e.client.IsAvailable() }

// Extract asks the model to pull question and answer pairs out of text.
func (e *Extractor) Extract(ctx context.Context, text string) ([]model.GeneratedQuestion, error) {
	if !e.client.IsAvailable() {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return []model.GeneratedQuestion{}, nil
	}

	content, err := e.client.Complete(ctx, extractSystemPrompt, extractPrompt(text), extractTemperature)
	if err != nil {
		return nil, &UpstreamError{Source: SourceLLM, Err: err}
	}
	return ParseQuestionArray(content)
}
