package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnage/portal/internal/model"
)

// HomeworkRepository handles homework and submission data access.
type HomeworkRepository struct {
	pool *pgxpool.Pool
}

// NewHomeworkRepository creates a new HomeworkRepository.
func NewHomeworkRepository(pool *pgxpool.Pool) *HomeworkRepository {
	return &HomeworkRepository{pool: pool}
}

// Create inserts a homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, hw *model.Homework) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO homework (id, class_id, subject, due_date, description, assigned_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING assigned_date`,
		hw.ID, hw.ClassID, hw.Subject, hw.DueDate, hw.Description, hw.AssignedBy,
	).Scan(&hw.AssignedDate)
}

// ListForStudent returns the class homework ordered by due date with the
// student's submission flag.
func (r *HomeworkRepository) ListForStudent(ctx context.Context, classID, studentID string) ([]model.StudentHomework, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT h.id, h.subject, to_char(h.due_date, 'YYYY-MM-DD'), h.description, s.student_id IS NOT NULL
		 FROM homework h
		 LEFT JOIN homework_submissions s ON s.homework_id = h.id AND s.student_id = $2
		 WHERE h.class_id = $1
		 ORDER BY h.due_date, h.subject`, classID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.StudentHomework
	for rows.Next() {
		var hw model.StudentHomework
		if err := rows.Scan(&hw.ID, &hw.Subject, &hw.DueDate, &hw.Description, &hw.Submitted); err != nil {
			return nil, err
		}
		items = append(items, hw)
	}
	return items, rows.Err()
}

// CountPending counts class homework the student has not submitted.
func (r *HomeworkRepository) CountPending(ctx context.Context, classID, studentID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM homework h
		 WHERE h.class_id = $1 AND NOT EXISTS (
		   SELECT 1 FROM homework_submissions s WHERE s.homework_id = h.id AND s.student_id = $2
		 )`, classID, studentID,
	).Scan(&n)
	return n, err
}

// ClassOf returns the class a homework item was assigned to.
func (r *HomeworkRepository) ClassOf(ctx context.Context, homeworkID uuid.UUID) (string, error) {
	var classID string
	err := r.pool.QueryRow(ctx, `SELECT class_id FROM homework WHERE id = $1`, homeworkID).Scan(&classID)
	return classID, notFound(err)
}

// MarkSubmitted records a submission. Submitting twice keeps the first timestamp.
func (r *HomeworkRepository) MarkSubmitted(ctx context.Context, homeworkID uuid.UUID, studentID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO homework_submissions (homework_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (homework_id, student_id) DO NOTHING`,
		homeworkID, studentID,
	)
	if hasPgCode(err, pgForeignKeyViolation) {
		return ErrNotFound
	}
	return err
}
