package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/generator"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/pdf"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Exam errors.
var (
	ErrExamNotAssigned  = errors.New("exam is not assigned to the caller")
	ErrAlreadySubmitted = errors.New("exam already submitted by the caller")
)

// ExamStore is the exam persistence used by ExamService.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListVisible(ctx context.Context, userID uuid.UUID, f model.ExamFilter) ([]model.Exam, int, error)
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendSubmission(ctx context.Context, rec repository.SubmissionRecord) error
}

// PDFCache keeps rendered exams per revision.
type PDFCache interface {
	GetExamPDF(ctx context.Context, examID string, updatedAt time.Time) ([]byte, error)
	SetExamPDF(ctx context.Context, examID string, updatedAt time.Time, data []byte) error
}

// SubmissionQueue hands graded submissions to the persistence worker.
type SubmissionQueue interface {
	ReserveSubmission(ctx context.Context, examID, userID string) (bool, error)
	ReleaseSubmission(ctx context.Context, examID, userID string) error
	EnqueueSubmission(ctx context.Context, rec repository.SubmissionRecord) error
}

// ExamService handles exam business logic, PDF export and submissions.
type ExamService struct {
	exams         ExamStore
	registry      *generator.Registry
	pdfs          PDFCache
	queue         SubmissionQueue
	defaultSource string
	now           func() time.Time
	log           zerolog.Logger
}

// NewExamService creates a new ExamService. defaultSource is used when a
// generation request names no source.
func NewExamService(
	exams ExamStore,
	registry *generator.Registry,
	pdfs PDFCache,
	queue SubmissionQueue,
	defaultSource string,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:         exams,
		registry:      registry,
		pdfs:          pdfs,
		queue:         queue,
		defaultSource: defaultSource,
		now:           time.Now,
		log:           log.With().Str("component", "exam_service").Logger(),
	}
}

// List returns exams owned by or assigned to the actor. Admins see every exam.
func (s *ExamService) List(ctx context.Context, actor Actor, f model.ExamFilter) ([]model.Exam, *response.Pagination, error) {
	f.PageQuery = f.Normalize()
	userID := actor.UserID
	if actor.IsAdmin() {
		userID = uuid.Nil
	}
	exams, total, err := s.exams.ListVisible(ctx, userID, f)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, paginate(f.PageQuery, total), nil
}

// Get returns an exam the actor may read: owned, public, assigned, or any for admins.
func (s *ExamService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Exam, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, e.UserID, e.IsPublic) && !e.IsAssignedTo(actor.UserID) {
		return nil, ErrForbidden
	}
	return e, nil
}

// Create stores an exam owned by the actor.
func (s *ExamService) Create(ctx context.Context, actor Actor, req *model.CreateExamRequest) (*model.Exam, error) {
	e := &model.Exam{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Subject:     req.Subject,
		Questions:   snapshotInputs(req.Questions),
		UserID:      actor.UserID,
		Duration:    req.Duration,
		IsPublic:    req.IsPublic,
		AssignedTo:  req.AssignedTo,
		Submissions: []model.Submission{},
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies a partial update. Only the owner or an admin may edit.
func (s *ExamService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor, e.UserID) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Level != nil {
		e.Level = *req.Level
	}
	if req.Subject != nil {
		e.Subject = *req.Subject
	}
	if req.Questions != nil {
		e.Questions = snapshotInputs(*req.Questions)
	}
	if req.Duration != nil {
		e.Duration = *req.Duration
	}
	if req.IsPublic != nil {
		e.IsPublic = *req.IsPublic
	}
	if req.AssignedTo != nil {
		e.AssignedTo = *req.AssignedTo
	}

	if err := s.exams.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes an exam. Only the owner or an admin may delete.
func (s *ExamService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	e, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canWrite(actor, e.UserID) {
		return ErrForbidden
	}
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	return nil
}

// Generate builds and stores an exam from a generation source.
func (s *ExamService) Generate(ctx context.Context, actor Actor, req *model.GenerateExamRequest) (*model.Exam, error) {
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
		Count:      req.QuestionCount,
		Types:      req.QuestionTypes,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		logGenerationError(s.log, err, source)
		return nil, err
	}
	usable := keepUsable(generated, req.QuestionCount, model.QuestionTypeMultipleChoice)
	if dropped := len(generated) - len(usable); dropped > 0 {
		s.log.Warn().Str("source", source).Int("dropped", dropped).Msg("Discarded unusable generated questions")
	}
	if len(usable) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]model.ExamQuestion, 0, len(usable))
	for i, g := range usable {
		id := g.ID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		questions = append(questions, model.ExamQuestion{
			ID:            id,
			Text:          g.Text,
			Options:       nonNilOptions(g.Options),
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
			Type:          g.Type,
			Points:        1,
		})
	}

	e := &model.Exam{
		Title:       fmt.Sprintf("%s - %s", req.Subject, req.Level),
		Description: fmt.Sprintf("%s seviyesinde %s konusu için otomatik oluşturulmuş sınav", req.Level, req.Subject),
		Level:       req.Level,
		Subject:     req.Subject,
		Questions:   questions,
		UserID:      actor.UserID,
		Duration:    req.Duration,
		Submissions: []model.Submission{},
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("exam_id", e.ID.String()).
		Str("source", source).
		Int("questions", len(questions)).
		Msg("Exam generated")
	return e, nil
}

// Export renders a readable exam as PDF. Renderings are cached per revision.
func (s *ExamService) Export(ctx context.Context, actor Actor, id uuid.UUID) (*model.Exam, []byte, error) {
	e, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}

	key := e.ID.String()
	if data, err := s.pdfs.GetExamPDF(ctx, key, e.UpdatedAt); err != nil {
		s.log.Warn().Err(err).Str("exam_id", key).Msg("pdf cache read failed")
	} else if data != nil {
		return e, data, nil
	}

	var buf bytes.Buffer
	if err := pdf.RenderExam(&buf, e); err != nil {
		return nil, nil, fmt.Errorf("render exam pdf: %w", err)
	}
	if err := s.pdfs.SetExamPDF(ctx, key, e.UpdatedAt, buf.Bytes()); err != nil {
		s.log.Warn().Err(err).Str("exam_id", key).Msg("pdf cache write failed")
	}
	return e, buf.Bytes(), nil
}

// Submit grades an attempt and queues it for persistence. Each user gets one
// attempt per exam, and only on exams assigned to them or public ones.
func (s *ExamService) Submit(ctx context.Context, actor Actor, id uuid.UUID, req *model.SubmitExamRequest) (*model.Submission, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublic && !e.IsAssignedTo(actor.UserID) {
		return nil, ErrExamNotAssigned
	}
	if e.HasSubmissionFrom(actor.UserID) {
		return nil, ErrAlreadySubmitted
	}

	sub, err := Grade(e, actor.UserID, req.Answers, req.Duration, s.now().UTC())
	if err != nil {
		return nil, err
	}

	examKey, userKey := e.ID.String(), actor.UserID.String()
	ok, err := s.queue.ReserveSubmission(ctx, examKey, userKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadySubmitted
	}

	rec := repository.SubmissionRecord{ExamID: e.ID, Submission: *sub}
	if err := s.queue.EnqueueSubmission(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examKey).Msg("enqueue failed, persisting directly")
		if err := s.exams.AppendSubmission(ctx, rec); err != nil {
			if rerr := s.queue.ReleaseSubmission(ctx, examKey, userKey); rerr != nil {
				s.log.Error().Err(rerr).Str("exam_id", examKey).Msg("failed to release submission reservation")
			}
			return nil, err
		}
	}

	s.log.Info().
		Str("exam_id", examKey).
		Str("user_id", userKey).
		Int("score", sub.TotalScore).
		Int("max_score", sub.MaxScore).
		Msg("Exam submitted")
	return sub, nil
}

func (s *ExamService) load(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	return e, err
}

// snapshotInputs turns client questions into exam snapshots numbered q1..qn.
func snapshotInputs(inputs []model.ExamQuestionInput) []model.ExamQuestion {
	out := make([]model.ExamQuestion, 0, len(inputs))
	for i, in := range inputs {
		qtype := in.Type
		if qtype == "" {
			qtype = model.QuestionTypeMultipleChoice
		}
		points := in.Points
		if points <= 0 {
			points = 1
		}
		out = append(out, model.ExamQuestion{
			ID:            fmt.Sprintf("q%d", i+1),
			QuestionID:    in.QuestionID,
			Text:          in.Text,
			Options:       nonNilOptions(in.Options),
			CorrectAnswer: in.CorrectAnswer,
			Explanation:   in.Explanation,
			Type:          qtype,
			Points:        points,
		})
	}
	return out
}

func nonNilOptions(opts []string) []string {
	if opts == nil {
		return []string{}
	}
	return opts
}
