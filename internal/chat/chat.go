// Package chat keeps a class message list up to date on the client side.
//
// A Subscription delivers full snapshots of a class's messages, newest first,
// to a Handler. Each delivery replaces whatever was shown before.
package chat

import (
	"context"
	"errors"

	"github.com/learnage/portal/internal/model"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInProgress = errors.New("a message is already being sent")
	ErrNoClass        = errors.New("no class selected")
)

// Handler receives every fetched snapshot.
type Handler func([]model.ChatMessage)

// Fetcher loads the newest messages of a class.
type Fetcher interface {
	FetchMessages(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error)
}

// Sender posts a new message.
type Sender interface {
	SendMessage(ctx context.Context, req *model.SendMessageRequest) (*model.ChatMessage, error)
}

// Subscription is a live feed of a class's messages.
type Subscription interface {
	// Refresh asks for an out-of-band fetch. Requests made while one is
	// already pending are merged.
	Refresh()
	// Close stops the feed. No snapshot is delivered after Close returns.
	Close() error
}
