package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, title, description, level, subject, questions, user_id, duration,
	is_public, assigned_to, submissions, created_at, updated_at`

// ExamRepository handles exam data access. Question snapshots and submissions
// are stored as JSONB arrays on the exam row.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	var questions, submissions []byte
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Level, &e.Subject, &questions, &e.UserID,
		&e.Duration, &e.IsPublic, &e.AssignedTo, &submissions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(questions, &e.Questions); err != nil {
		return nil, fmt.Errorf("decode exam questions: %w", err)
	}
	if err := json.Unmarshal(submissions, &e.Submissions); err != nil {
		return nil, fmt.Errorf("decode exam submissions: %w", err)
	}
	return e, nil
}

func encodeJSONList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	if e.Duration <= 0 {
		e.Duration = model.DefaultExamDuration
	}
	questions, err := encodeJSONList(e.Questions)
	if err != nil {
		return err
	}
	submissions, err := encodeJSONList(e.Submissions)
	if err != nil {
		return err
	}
	e.AssignedTo = nonNilUUIDs(e.AssignedTo)

	err = r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, level, subject, questions, user_id, duration,
		                    is_public, assigned_to, submissions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.Level, e.Subject, questions, e.UserID, e.Duration,
		e.IsPublic, e.AssignedTo, submissions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves an exam by id.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// ListVisible returns exams owned by or assigned to userID, newest first.
// A nil userID lists every exam.
func (r *ExamRepository) ListVisible(ctx context.Context, userID uuid.UUID, f model.ExamFilter) ([]model.Exam, int, error) {
	var w whereClause
	if userID != uuid.Nil {
		w.add("(user_id = ? OR ? = ANY(assigned_to))", userID, userID)
	}
	if f.Subject != "" {
		w.add("subject = ?", f.Subject)
	}
	if f.Level != "" {
		w.add("level = ?", f.Level)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + examColumns + ` FROM exams` + w.String() + ` ORDER BY created_at DESC`
	query += ` LIMIT ` + w.next(f.Limit()) + ` OFFSET ` + w.next(f.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// Update persists the exam's editable fields. Submissions are left untouched.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	questions, err := encodeJSONList(e.Questions)
	if err != nil {
		return err
	}
	e.AssignedTo = nonNilUUIDs(e.AssignedTo)

	err = r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, level = $3, subject = $4, questions = $5,
		     duration = $6, is_public = $7, assigned_to = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING updated_at`,
		e.Title, e.Description, e.Level, e.Subject, questions,
		e.Duration, e.IsPublic, e.AssignedTo, e.ID,
	).Scan(&e.UpdatedAt)
	return mapErr(err)
}

// Delete removes an exam by id.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmissionRecord pairs a submission with the exam it belongs to.
type SubmissionRecord struct {
	ExamID     uuid.UUID        `json:"exam_id"`
	Submission model.Submission `json:"submission"`
}

// AppendSubmissions appends a batch of submissions with a single statement.
func (r *ExamRepository) AppendSubmissions(ctx context.Context, batch []SubmissionRecord) error {
	if len(batch) == 0 {
		return nil
	}

	examIDs := make([]uuid.UUID, 0, len(batch))
	payloads := make([]string, 0, len(batch))
	for _, rec := range batch {
		raw, err := json.Marshal(rec.Submission)
		if err != nil {
			return err
		}
		examIDs = append(examIDs, rec.ExamID)
		payloads = append(payloads, string(raw))
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE exams AS e
		 SET submissions = e.submissions || t.subs
		 FROM (
			SELECT u.exam_id, jsonb_agg(u.sub::jsonb ORDER BY u.ord) AS subs
			FROM UNNEST($1::uuid[], $2::text[]) WITH ORDINALITY AS u (exam_id, sub, ord)
			GROUP BY u.exam_id
		 ) AS t
		 WHERE e.id = t.exam_id`,
		examIDs, payloads,
	)
	return err
}

// AppendSubmission appends one submission.
func (r *ExamRepository) AppendSubmission(ctx context.Context, rec SubmissionRecord) error {
	raw, err := json.Marshal(rec.Submission)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET submissions = submissions || jsonb_build_array($1::jsonb) WHERE id = $2`,
		string(raw), rec.ExamID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
