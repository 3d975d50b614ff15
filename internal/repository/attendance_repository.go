package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnage/portal/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// MarkBatch stores every record in one transaction. Re-marking a student for
// the same date overwrites the previous mark.
func (r *AttendanceRepository) MarkBatch(ctx context.Context, records []model.AttendanceRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO attendance (id, student_id, student_name, class_id, date, status, marked_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (student_id, date) DO UPDATE
			 SET status = EXCLUDED.status, class_id = EXCLUDED.class_id,
			     student_name = EXCLUDED.student_name,
			     marked_by = EXCLUDED.marked_by, marked_at = NOW()`,
			rec.ID, rec.StudentID, rec.StudentName, rec.ClassID, rec.Date, rec.Status, rec.MarkedBy,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return tx.Commit(ctx)
}

// GetStatus returns the student's mark for a date, or ErrNotFound if unmarked.
func (r *AttendanceRepository) GetStatus(ctx context.Context, studentID string, date time.Time) (model.AttendanceStatus, error) {
	var status model.AttendanceStatus
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM attendance WHERE student_id = $1 AND date = $2`,
		studentID, date,
	).Scan(&status)
	if err != nil {
		return "", notFound(err)
	}
	return status, nil
}

// ListByStudent returns the student's most recent marks, newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, student_name, class_id, date, status, marked_by, marked_at
		 FROM attendance WHERE student_id = $1
		 ORDER BY date DESC LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

// ListByClass returns a class's marks between two dates inclusive, ordered by date then name.
func (r *AttendanceRepository) ListByClass(ctx context.Context, classID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, student_name, class_id, date, status, marked_by, marked_at
		 FROM attendance WHERE class_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date, student_name`, classID, from, to)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

func collectAttendance(rows pgx.Rows) ([]model.AttendanceRecord, error) {
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var a model.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.StudentName, &a.ClassID, &a.Date, &a.Status, &a.MarkedBy, &a.MarkedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
