package repository

import (
	"context"

	"github.com/akilliyazili/yazili-backend/internal/database"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, text, options, correct_answer, explanation, type, level, subject,
	user_id, tags, difficulty, is_public, created_at, updated_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectAnswer, &q.Explanation, &q.Type, &q.Level,
		&q.Subject, &q.UserID, &q.Tags, &q.Difficulty, &q.IsPublic, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return q, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertQuestion(ctx context.Context, db queryRower, q *model.Question) error {
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	q.Options = nonNilStrings(q.Options)
	q.Tags = nonNilStrings(q.Tags)

	err := db.QueryRow(ctx,
		`INSERT INTO questions (text, options, correct_answer, explanation, type, level, subject,
		                        user_id, tags, difficulty, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		q.Text, q.Options, q.CorrectAnswer, q.Explanation, q.Type, q.Level, q.Subject,
		q.UserID, q.Tags, q.Difficulty, q.IsPublic,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return mapErr(err)
}

// Create inserts a single question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return insertQuestion(ctx, r.pool, q)
}

// CreateBatch inserts all questions in one transaction; either all are saved or none.
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []*model.Question) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, q := range questions {
			if err := insertQuestion(ctx, tx, q); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// ListByOwner returns a page of the owner's questions, newest first.
func (r *QuestionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f model.QuestionFilter) ([]model.Question, int, error) {
	var w whereClause
	w.add("user_id = ?", ownerID)
	if f.Subject != "" {
		w.add("subject = ?", f.Subject)
	}
	if f.Level != "" {
		w.add("level = ?", f.Level)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + w.String() + ` ORDER BY created_at DESC`
	query += ` LIMIT ` + w.next(f.Limit()) + ` OFFSET ` + w.next(f.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// Update persists every mutable field of q.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	q.Options = nonNilStrings(q.Options)
	q.Tags = nonNilStrings(q.Tags)

	err := r.pool.QueryRow(ctx,
		`UPDATE questions
		 SET text = $1, options = $2, correct_answer = $3, explanation = $4, type = $5, level = $6,
		     subject = $7, tags = $8, difficulty = $9, is_public = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING updated_at`,
		q.Text, q.Options, q.CorrectAnswer, q.Explanation, q.Type, q.Level,
		q.Subject, q.Tags, q.Difficulty, q.IsPublic, q.ID,
	).Scan(&q.UpdatedAt)
	return mapErr(err)
}

// Delete removes a question by id.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
