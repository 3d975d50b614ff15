package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnage/portal/internal/model"
)

const userColumns = `uid, email, name, role, COALESCE(class_id, ''), COALESCE(parent_id, ''), password_hash, created_at, updated_at`

// UserRepository handles account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.UID, &u.Email, &u.Name, &u.Role, &u.ClassID, &u.ParentID, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetByUID retrieves a user by uid.
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid))
}

// GetByEmail retrieves a user by their unique, case-insensitive email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// Create inserts a new user. The caller supplies the uid.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (uid, email, name, role, class_id, parent_id, password_hash)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		 RETURNING created_at, updated_at`,
		u.UID, u.Email, u.Name, u.Role, u.ClassID, u.ParentID, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpdateName changes a user's display name.
func (r *UserRepository) UpdateName(ctx context.Context, uid, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1, updated_at = CURRENT_TIMESTAMP WHERE uid = $2`,
		name, uid,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStudentsByClass returns the roster of a class ordered by name.
func (r *UserRepository) ListStudentsByClass(ctx context.Context, classID string) ([]model.StudentSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT uid, name, email FROM users
		 WHERE role = 'student' AND class_id = $1
		 ORDER BY name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.StudentSummary
	for rows.Next() {
		var s model.StudentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetChildOfParent returns the first student linked to a parent account.
func (r *UserRepository) GetChildOfParent(ctx context.Context, parentID string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE parent_id = $1 AND role = 'student'
		 ORDER BY created_at LIMIT 1`, parentID))
}
