package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidClassCode is returned when no class carries the given join code.
var ErrInvalidClassCode = errors.New("no class with this code")

const (
	classCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	classCodeAttempts = 5
)

// ClassStore is the class persistence used by ClassService.
type ClassStore interface {
	Create(ctx context.Context, c *model.Class) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	GetByCode(ctx context.Context, code string) (*model.Class, error)
	ListForUser(ctx context.Context, userID uuid.UUID, p model.PageQuery) ([]model.Class, int, error)
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddStudent(ctx context.Context, classID, userID uuid.UUID) error
	AssignExam(ctx context.Context, classID uuid.UUID, a model.AssignedExam) error
}

// ExamReader loads exams for assignment checks.
type ExamReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// ClassService manages classes, join codes and exam assignments.
type ClassService struct {
	classes  ClassStore
	exams    ExamReader
	profiles ProfileCache
	now      func() time.Time
	log      zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classes ClassStore, exams ExamReader, profiles ProfileCache, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes:  classes,
		exams:    exams,
		profiles: profiles,
		now:      time.Now,
		log:      log.With().Str("component", "class_service").Logger(),
	}
}

// GenerateClassCode returns a random uppercase alphanumeric join code.
func GenerateClassCode() (string, error) {
	max := big.NewInt(int64(len(classCodeAlphabet)))
	code := make([]byte, model.ClassCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = classCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// List returns classes the actor teaches or attends. Admins see every class.
func (s *ClassService) List(ctx context.Context, actor Actor, p model.PageQuery) ([]model.Class, *response.Pagination, error) {
	p = p.Normalize()
	userID := actor.UserID
	if actor.IsAdmin() {
		userID = uuid.Nil
	}
	classes, total, err := s.classes.ListForUser(ctx, userID, p)
	if err != nil {
		return nil, nil, err
	}
	if classes == nil {
		classes = []model.Class{}
	}
	return classes, paginate(p, total), nil
}

// Get returns a class visible to its teacher, its students and admins.
func (s *ClassService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Class, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor, c.TeacherID) && !c.HasStudent(actor.UserID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// Create stores a class taught by the actor. A join code is generated when the
// request carries none, retrying on the rare collision.
func (s *ClassService) Create(ctx context.Context, actor Actor, req *model.CreateClassRequest) (*model.Class, error) {
	c := &model.Class{
		Name:          req.Name,
		Description:   req.Description,
		TeacherID:     actor.UserID,
		Students:      []uuid.UUID{},
		Level:         req.Level,
		Subject:       req.Subject,
		AssignedExams: []model.AssignedExam{},
		Code:          strings.ToUpper(req.Code),
	}
	if c.Code != "" {
		if err := s.classes.Create(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}

	var err error
	for attempt := 0; attempt < classCodeAttempts; attempt++ {
		if c.Code, err = GenerateClassCode(); err != nil {
			return nil, err
		}
		err = s.classes.Create(ctx, c)
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		s.log.Debug().Str("code", c.Code).Msg("class code collision, retrying")
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("class_id", c.ID.String()).Str("code", c.Code).Msg("Class created")
	return c, nil
}

// Update applies a partial update. Only the teacher or an admin may edit.
func (s *ClassService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *model.UpdateClassRequest) (*model.Class, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor, c.TeacherID) {
		return nil, ErrForbidden
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Subject != nil {
		c.Subject = *req.Subject
	}
	if err := s.classes.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a class. Only the teacher or an admin may delete.
func (s *ClassService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canWrite(actor, c.TeacherID) {
		return ErrForbidden
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}

// Join enrolls the actor in the class carrying code. Joining twice is a no-op.
func (s *ClassService) Join(ctx context.Context, actor Actor, code string) (*model.Class, error) {
	c, err := s.classes.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidClassCode
	}
	if err != nil {
		return nil, err
	}

	if err := s.classes.AddStudent(ctx, c.ID, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if !c.HasStudent(actor.UserID) {
		c.Students = append(c.Students, actor.UserID)
	}

	// The profile carries class_ids.
	if err := s.profiles.DeleteProfile(ctx, actor.Subject); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate profile cache")
	}
	return c, nil
}

// AssignExam hands an exam to every student of the class. The actor must teach
// the class and be able to read the exam.
func (s *ClassService) AssignExam(ctx context.Context, actor Actor, classID uuid.UUID, req *model.AssignExamRequest) (*model.Class, error) {
	c, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor, c.TeacherID) {
		return nil, ErrForbidden
	}

	e, err := s.exams.GetByID(ctx, req.ExamID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canRead(actor, e.UserID, e.IsPublic) {
		return nil, ErrForbidden
	}

	assignment := model.AssignedExam{ExamID: e.ID, AssignedAt: s.now().UTC(), DueDate: req.DueDate}
	if err := s.classes.AssignExam(ctx, c.ID, assignment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	c.AssignedExams = append(c.AssignedExams, assignment)

	s.log.Info().
		Str("class_id", c.ID.String()).
		Str("exam_id", e.ID.String()).
		Int("students", len(c.Students)).
		Msg("Exam assigned to class")
	return c, nil
}

func (s *ClassService) load(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClassNotFound
	}
	return c, err
}
