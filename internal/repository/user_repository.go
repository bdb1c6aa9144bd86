package repository

import (
	"context"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, external_id, name, email, role, profile_picture, class_ids,
	password_hash, last_login, created_at, updated_at`

// UserRepository handles user profile data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.Role, &u.ProfilePicture,
		&u.ClassIDs, &u.PasswordHash, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// Create inserts a user. When ExternalID is empty the user's own id is used,
// which is how locally registered users are addressed by their tokens.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ExternalID == "" {
		u.ExternalID = u.ID.String()
	}
	u.ClassIDs = nonNilUUIDs(u.ClassIDs)

	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, external_id, name, email, role, profile_picture, class_ids, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		u.ID, u.ExternalID, u.Name, u.Email, u.Role, u.ProfilePicture, u.ClassIDs, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByExternalID retrieves a user by identity-provider subject.
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// List returns a page of users, optionally filtered by role.
func (r *UserRepository) List(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	var w whereClause
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC`
	query += ` LIMIT ` + w.next(f.Limit()) + ` OFFSET ` + w.next(f.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// UpdateProfile persists the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $1, email = $2, profile_picture = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		u.Name, u.Email, u.ProfilePicture, u.ID,
	).Scan(&u.UpdatedAt)
	return mapErr(err)
}

// TouchLastLogin stamps the login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
