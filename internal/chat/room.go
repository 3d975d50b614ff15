package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/learnage/portal/internal/model"
)

// Room is the client state of a class chat: the displayed list and the compose box.
type Room struct {
	author *model.Principal
	sender Sender

	mu       sync.Mutex
	messages []model.ChatMessage
	draft    string
	sub      Subscription
	onChange func([]model.ChatMessage)

	sending atomic.Bool
}

// NewRoom creates a room for the author's class.
func NewRoom(author *model.Principal, sender Sender) *Room {
	return &Room{author: author, sender: sender, messages: []model.ChatMessage{}}
}

// ClassID returns the class the room belongs to.
func (r *Room) ClassID() string {
	return r.author.ClassID
}

// Attach binds the subscription refreshed after each successful send.
func (r *Room) Attach(sub Subscription) {
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
}

// OnChange registers a callback run after every applied snapshot.
func (r *Room) OnChange(fn func([]model.ChatMessage)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Apply replaces the displayed list. It is the Handler given to a Subscription.
func (r *Room) Apply(msgs []model.ChatMessage) {
	cp := make([]model.ChatMessage, len(msgs))
	copy(cp, msgs)

	r.mu.Lock()
	r.messages = cp
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(r.Messages())
	}
}

// Messages returns a copy of the displayed list, newest first.
func (r *Room) Messages() []model.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]model.ChatMessage, len(r.messages))
	copy(cp, r.messages)
	return cp
}

// Empty reports whether the "no messages" placeholder should be shown.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages) == 0
}

// Draft returns the compose box content.
func (r *Room) Draft() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft
}

// SetDraft replaces the compose box content.
func (r *Room) SetDraft(s string) {
	r.mu.Lock()
	r.draft = s
	r.mu.Unlock()
}

// Sending reports whether a send is in flight.
func (r *Room) Sending() bool {
	return r.sending.Load()
}

// Send posts body as the author. Blank bodies are rejected without a network
// call and only one send may be in flight. On success the draft is cleared and
// the subscription refreshed once; on failure the draft keeps body for retry.
func (r *Room) Send(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	if r.author.ClassID == "" {
		return ErrNoClass
	}
	if !r.sending.CompareAndSwap(false, true) {
		return ErrSendInProgress
	}
	defer r.sending.Store(false)

	r.SetDraft(body)

	_, err := r.sender.SendMessage(ctx, &model.SendMessageRequest{
		ClassID:    r.author.ClassID,
		SenderID:   r.author.UID,
		SenderName: r.author.Name,
		SenderRole: r.author.Role,
		Message:    body,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.draft = ""
	sub := r.sub
	r.mu.Unlock()

	if sub != nil {
		sub.Refresh()
	}
	return nil
}
