package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnage/portal/internal/model"
)

// MessageRepository handles class chat storage.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// ListByClass returns up to limit messages of a class, newest first.
func (r *MessageRepository) ListByClass(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_id, sender_id, sender_name, sender_role, body, created_at
		 FROM messages WHERE class_id = $1
		 ORDER BY created_at DESC LIMIT $2`, classID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ClassID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Create persists a message; the timestamp is assigned by the database.
func (r *MessageRepository) Create(ctx context.Context, m *model.ChatMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, class_id, sender_id, sender_name, sender_role, body)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		m.ID, m.ClassID, m.SenderID, m.SenderName, m.SenderRole, m.Message,
	).Scan(&m.Timestamp)
}

// GetByID retrieves a single message.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	m := &model.ChatMessage{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, class_id, sender_id, sender_name, sender_role, body, created_at
		 FROM messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.ClassID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Message, &m.Timestamp)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// Delete removes a message by ID.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
