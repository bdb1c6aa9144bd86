package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akilliyazili/yazili-backend/internal/database"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const classColumns = `id, name, description, teacher_id, students, level, subject,
	assigned_exams, code, created_at, updated_at`

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row pgx.Row) (*model.Class, error) {
	c := &model.Class{}
	var assigned []byte
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.Students, &c.Level,
		&c.Subject, &assigned, &c.Code, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(assigned, &c.AssignedExams); err != nil {
		return nil, fmt.Errorf("decode assigned exams: %w", err)
	}
	return c, nil
}

// Create inserts a class. A duplicate code yields ErrConflict.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	c.Students = nonNilUUIDs(c.Students)
	assigned, err := encodeJSONList(c.AssignedExams)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, description, teacher_id, students, level, subject, assigned_exams, code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.TeacherID, c.Students, c.Level, c.Subject, assigned, c.Code,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves a class by id.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
}

// GetByCode retrieves a class by its join code.
func (r *ClassRepository) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE code = $1`, code))
}

// ListForUser returns classes taught by or containing userID. A nil userID lists all classes.
func (r *ClassRepository) ListForUser(ctx context.Context, userID uuid.UUID, p model.PageQuery) ([]model.Class, int, error) {
	var w whereClause
	if userID != uuid.Nil {
		w.add("(teacher_id = ? OR ? = ANY(students))", userID, userID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classes`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + classColumns + ` FROM classes` + w.String() + ` ORDER BY created_at DESC`
	query += ` LIMIT ` + w.next(p.Limit()) + ` OFFSET ` + w.next(p.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, 0, err
		}
		classes = append(classes, *c)
	}
	return classes, total, rows.Err()
}

// Update persists the editable class fields.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE classes SET name = $1, description = $2, level = $3, subject = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		c.Name, c.Description, c.Level, c.Subject, c.ID,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

// Delete removes a class and drops it from its students' class lists.
func (r *ClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET class_ids = array_remove(class_ids, $1) WHERE $1 = ANY(class_ids)`, id)
		return err
	})
}

// AddStudent enrolls userID in the class, records the class on the user and
// adds the user to the exams already assigned to the class. Idempotent.
func (r *ClassRepository) AddStudent(ctx context.Context, classID, userID uuid.UUID) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE classes
			 SET students = CASE WHEN $2 = ANY(students) THEN students ELSE array_append(students, $2) END,
			     updated_at = NOW()
			 WHERE id = $1`,
			classID, userID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET class_ids = array_append(class_ids, $1)
			 WHERE id = $2 AND NOT ($1 = ANY(class_ids))`,
			classID, userID,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE exams
			 SET assigned_to = array_append(assigned_to, $2), updated_at = NOW()
			 WHERE id IN (
			     SELECT (a->>'exam_id')::uuid
			     FROM classes, jsonb_array_elements(assigned_exams) AS a
			     WHERE classes.id = $1
			 ) AND NOT ($2 = ANY(assigned_to))`,
			classID, userID,
		)
		return err
	})
}

// AssignExam records the assignment on the class and adds every enrolled
// student to the exam's assignees.
func (r *ClassRepository) AssignExam(ctx context.Context, classID uuid.UUID, a model.AssignedExam) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var students []uuid.UUID
		err := tx.QueryRow(ctx,
			`UPDATE classes
			 SET assigned_exams = assigned_exams || jsonb_build_array($2::jsonb), updated_at = NOW()
			 WHERE id = $1
			 RETURNING students`,
			classID, string(raw),
		).Scan(&students)
		if err != nil {
			return mapErr(err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE exams
			 SET assigned_to = ARRAY(SELECT DISTINCT unnest(assigned_to || $2::uuid[])), updated_at = NOW()
			 WHERE id = $1`,
			a.ExamID, nonNilUUIDs(students),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
