package websocket

import "github.com/learnage/portal/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionRefresh Action = "refresh"
	ActionPing    Action = "ping"
)

// RequestEnvelope carries a client action.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// ResponseEnvelope is what the server sends. Messages is set for snapshots,
// Error for error events.
type ResponseEnvelope struct {
	Event    Event               `json:"event"`
	ClassID  string              `json:"class_id,omitempty"`
	Messages []model.ChatMessage `json:"messages,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// SnapshotResponse is the full current message list of a class, newest first.
// Messages is always present, empty for a class without messages.
type SnapshotResponse struct {
	Event    Event               `json:"event"`
	ClassID  string              `json:"class_id"`
	Messages []model.ChatMessage `json:"messages"`
}

// NewSnapshot builds a snapshot event, normalising a nil list to empty.
func NewSnapshot(classID string, msgs []model.ChatMessage) SnapshotResponse {
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return SnapshotResponse{Event: EventSnapshot, ClassID: classID, Messages: msgs}
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
