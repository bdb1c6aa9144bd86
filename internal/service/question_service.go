package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/akilliyazili/yazili-backend/internal/generator"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/ocr"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoQuestions is returned when a generation source produced nothing.
var ErrNoQuestions = errors.New("generation produced no questions")

// QuestionStore is the question persistence used by QuestionService.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	CreateBatch(ctx context.Context, qs []*model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f model.QuestionFilter) ([]model.Question, int, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionExtractor segments recognized text into questions.
type QuestionExtractor interface {
	IsAvailable() bool
	Extract(ctx context.Context, text string) ([]model.GeneratedQuestion, error)
}

// QuestionService handles question business logic.
type QuestionService struct {
	questions     QuestionStore
	registry      *generator.Registry
	extractor     QuestionExtractor
	recognizer    ocr.Recognizer
	defaultSource string
	log           zerolog.Logger
}

// NewQuestionService creates a new QuestionService. defaultSource is used when
// a generation request names no source.
func NewQuestionService(
	questions QuestionStore,
	registry *generator.Registry,
	extractor QuestionExtractor,
	recognizer ocr.Recognizer,
	defaultSource string,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questions:     questions,
		registry:      registry,
		extractor:     extractor,
		recognizer:    recognizer,
		defaultSource: defaultSource,
		log:           log.With().Str("component", "question_service").Logger(),
	}
}

// List returns a page of the actor's own questions.
func (s *QuestionService) List(ctx context.Context, actor Actor, f model.QuestionFilter) ([]model.Question, *response.Pagination, error) {
	f.PageQuery = f.Normalize()
	qs, total, err := s.questions.ListByOwner(ctx, actor.UserID, f)
	if err != nil {
		return nil, nil, err
	}
	if qs == nil {
		qs = []model.Question{}
	}
	return qs, paginate(f.PageQuery, total), nil
}

// Get returns a question the actor may read.
func (s *QuestionService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Question, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, q.UserID, q.IsPublic) {
		return nil, ErrForbidden
	}
	return q, nil
}

// Create stores a question owned by the actor.
func (s *QuestionService) Create(ctx context.Context, actor Actor, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Type:          req.Type,
		Level:         req.Level,
		Subject:       req.Subject,
		UserID:        actor.UserID,
		Tags:          req.Tags,
		Difficulty:    req.Difficulty,
		IsPublic:      req.IsPublic,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update applies a partial update. Only the owner or an admin may edit.
func (s *QuestionService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor, q.UserID) {
		return nil, ErrForbidden
	}
	req.Apply(q)
	if err := s.questions.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// Delete removes a question. Only the owner or an admin may delete.
func (s *QuestionService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	q, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canWrite(actor, q.UserID) {
		return ErrForbidden
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	return nil
}

// Generate runs the requested source and saves at most req.Count usable
// questions for the actor in one transaction.
func (s *QuestionService) Generate(ctx context.Context, actor Actor, req *model.GenerateQuestionsRequest) ([]*model.Question, error) {
	source := req.Source
	if source == "" {
		source = s.defaultSource
	}
	strategy, err := s.registry.Get(source)
	if err != nil {
		return nil, err
	}

	generated, err := strategy.Generate(ctx, generator.Request{
		Level:      req.Level,
		Subject:    req.Subject,
		Count:      req.Count,
		Types:      []model.QuestionType{req.Type},
		Difficulty: req.Difficulty,
	})
	if err != nil {
		logGenerationError(s.log, err, source)
		return nil, err
	}
	usable := keepUsable(generated, req.Count, req.Type)
	if dropped := len(generated) - len(usable); dropped > 0 {
		s.log.Warn().Str("source", source).Int("dropped", dropped).Msg("Discarded unusable generated questions")
	}
	if len(usable) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]*model.Question, 0, len(usable))
	for _, g := range usable {
		questions = append(questions, &model.Question{
			Text:          g.Text,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
			Type:          g.Type,
			Level:         req.Level,
			Subject:       req.Subject,
			UserID:        actor.UserID,
			Difficulty:    req.Difficulty,
		})
	}
	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("source", source).
		Str("subject", req.Subject).
		Int("count", len(questions)).
		Msg("Questions generated")
	return questions, nil
}

// Extract recognizes the text of an uploaded image or PDF and segments it into
// questions. Nothing is stored.
func (s *QuestionService) Extract(ctx context.Context, data []byte) (*model.ExtractResult, error) {
	contentType := mimetype.Detect(data).String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if contentType != "application/pdf" && !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedFile
	}
	if !s.extractor.IsAvailable() {
		return nil, generator.ErrUnavailable
	}

	text, err := s.recognizer.Recognize(ctx, data, contentType)
	switch {
	case errors.Is(err, ocr.ErrDisabled):
		return nil, err
	case errors.Is(err, ocr.ErrUnsupportedType):
		return nil, ErrUnsupportedFile
	case err != nil:
		s.log.Error().Err(err).Msg("ocr failed")
		return nil, &generator.UpstreamError{Source: "ocr", Err: err}
	}

	questions, err := s.extractor.Extract(ctx, text)
	if err != nil {
		logGenerationError(s.log, err, generator.SourceLLM)
		return nil, err
	}
	return &model.ExtractResult{Questions: questions, ExtractedText: text}, nil
}

func (s *QuestionService) load(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

// logGenerationError reports upstream and parse failures at error level.
func logGenerationError(log zerolog.Logger, err error, source string) {
	var upstream *generator.UpstreamError
	switch {
	case errors.As(err, &upstream):
		log.Error().Err(err).Str("source", source).Msg("generation upstream failed")
	case errors.Is(err, generator.ErrNoJSONArray), errors.Is(err, generator.ErrInvalidJSON):
		log.Error().Err(err).Str("source", source).Msg("generation response unparsable")
	}
}

// keepUsable returns at most count generated questions, filling a missing type
// with fallback. A multiple choice answer is rewritten to the option it names;
// items without options or with an answer matching none are skipped.
func keepUsable(generated []model.GeneratedQuestion, count int, fallback model.QuestionType) []model.GeneratedQuestion {
	out := make([]model.GeneratedQuestion, 0, min(len(generated), count))
	for _, g := range generated {
		if len(out) == count {
			break
		}
		if g.Type == "" {
			g.Type = fallback
		}
		if g.Type == model.QuestionTypeMultipleChoice {
			answer, ok := resolveOption(g.Options, g.CorrectAnswer)
			if !ok {
				continue
			}
			g.CorrectAnswer = answer
		}
		out = append(out, g)
	}
	return out
}

// resolveOption finds the option an answer refers to, either verbatim, equal
// after normalization, or by a bare label such as "B".
func resolveOption(options []string, answer string) (string, bool) {
	if slices.Contains(options, answer) {
		return answer, true
	}
	norm := normalizeAnswer(answer)
	if norm == "" {
		return "", false
	}
	for _, o := range options {
		if normalizeAnswer(o) == norm {
			return o, true
		}
	}

	label, bare := optionLabel(norm)
	if !bare {
		return "", false
	}
	for _, o := range options {
		if l, _ := optionLabel(normalizeAnswer(o)); l == label {
			return o, true
		}
	}
	// Unlabelled options: "B" is the second one.
	if i := int(label - 'a'); i >= 0 && i < len(options) {
		return options[i], true
	}
	return "", false
}
