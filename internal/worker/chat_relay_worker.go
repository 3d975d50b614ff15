package worker

import (
	"context"
	"encoding/json"

	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/service"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotSource loads the current message list of a class.
type SnapshotSource interface {
	List(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error)
}

// Broadcaster delivers a payload to every subscriber of a class on this instance.
type Broadcaster interface {
	HasSubscribers(classID string) bool
	Broadcast(classID string, v interface{}) int
}

// ChatRelayWorker listens to every class message channel and pushes a fresh
// snapshot to the WebSocket clients connected to this instance.
type ChatRelayWorker struct {
	rdb    *redis.Client
	source SnapshotSource
	hub    Broadcaster
	limit  int
	log    zerolog.Logger
}

// NewChatRelayWorker creates a new ChatRelayWorker.
func NewChatRelayWorker(rdb *redis.Client, source SnapshotSource, hub Broadcaster, limit int, log zerolog.Logger) *ChatRelayWorker {
	return &ChatRelayWorker{
		rdb:    rdb,
		source: source,
		hub:    hub,
		limit:  limit,
		log:    log.With().Str("component", "chat_relay_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ChatRelayWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	pubsub := w.rdb.PSubscribe(ctx, config.CacheKey.ClassMessagesPattern())
	defer pubsub.Close()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				w.log.Warn().Msg("Subscription closed")
				return
			}
			w.relay(ctx, msg)
		}
	}
}

func (w *ChatRelayWorker) relay(ctx context.Context, msg *redis.Message) {
	classID, ok := config.CacheKey.ClassIDFromChannel(msg.Channel)
	if !ok {
		return
	}

	var ev service.MessageEvent
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		w.log.Error().Err(err).Str("channel", msg.Channel).Msg("Unmarshal error")
		return
	}

	if !w.hub.HasSubscribers(classID) {
		return
	}

	msgs, err := w.source.List(ctx, classID, w.limit)
	if err != nil {
		w.log.Error().Err(err).Str("class_id", classID).Msg("Snapshot fetch failed")
		return
	}

	n := w.hub.Broadcast(classID, ws.NewSnapshot(classID, msgs))
	w.log.Debug().
		Str("class_id", classID).
		Str("event", ev.Type).
		Int("clients", n).
		Msg("Snapshot relayed")
}
