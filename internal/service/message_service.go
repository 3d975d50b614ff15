package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// Class channel events announced on Redis PubSub.
const (
	MessageEventCreated = "created"
	MessageEventDeleted = "deleted"
)

// MessageEvent is published on a class channel whenever its message list changes.
type MessageEvent struct {
	Type      string `json:"type"`
	ClassID   string `json:"class_id"`
	MessageID string `json:"message_id"`
}

// MessageService handles class chat messages.
type MessageService struct {
	messages MessageStore
	rdb      *redis.Client
	log      zerolog.Logger
	now      func() time.Time
}

// NewMessageService creates a new MessageService. rdb may be nil, which disables
// change notifications for push subscribers.
func NewMessageService(messages MessageStore, rdb *redis.Client, log zerolog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		rdb:      rdb,
		log:      log.With().Str("component", "message_service").Logger(),
		now:      time.Now,
	}
}

// NormalizeLimit applies the default and the upper bound to a requested page size.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		return MaxMessageLimit
	}
	return limit
}

// List returns the newest messages of a class, newest first. An empty class yields an empty slice.
func (s *MessageService) List(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error) {
	msgs, err := s.messages.ListByClass(ctx, classID, NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return msgs, nil
}

// Send stores a message and notifies push subscribers of the class.
func (s *MessageService) Send(ctx context.Context, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.ChatMessage{
		ID:         uuid.New().String(),
		ClassID:    req.ClassID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		SenderRole: req.SenderRole,
		Message:    body,
		Timestamp:  s.now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, MessageEvent{Type: MessageEventCreated, ClassID: msg.ClassID, MessageID: msg.ID})
	return msg, nil
}

// Delete removes a message. Only its sender may delete it.
func (s *MessageService) Delete(ctx context.Context, messageID, userID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != userID {
		return ErrNotMessageSender
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	s.publish(ctx, MessageEvent{Type: MessageEventDeleted, ClassID: msg.ClassID, MessageID: msg.ID})
	return nil
}

// publish is best-effort: polling clients still converge on the next tick.
func (s *MessageService) publish(ctx context.Context, ev MessageEvent) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	channel := config.CacheKey.ClassMessagesChannel(ev.ClassID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("class_id", ev.ClassID).Msg("Failed to publish message event")
	}
}
