package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/service"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second
)

// EventsHandler streams class chat snapshots as Server-Sent Events, for
// clients that cannot hold a WebSocket.
type EventsHandler struct {
	rdb            *redis.Client
	messageService *service.MessageService
	historyLimit   int
	log            zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(rdb *redis.Client, messageService *service.MessageService, historyLimit int, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		rdb:            rdb,
		messageService: messageService,
		historyLimit:   historyLimit,
		log:            log.With().Str("component", "events_handler").Logger(),
	}
}

// ClassMessagesSSE godoc
// GET /api/messages/class/:class_id/events
// Writes a snapshot event on connect and after every change announced on the class channel.
func (h *EventsHandler) ClassMessagesSSE(c *gin.Context) {
	classID := c.Param("class_id")
	if _, ok := classMember(c, classID); !ok {
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Subscribe before the first snapshot so no change slips between them.
	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ClassMessagesChannel(classID))
	defer pubsub.Close()
	ch := pubsub.Channel()

	h.writeSnapshot(c, reqCtx, classID)

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	pingPayload, _ := json.Marshal(ws.PongResponse{Event: ws.EventPong})

	h.log.Info().Str("class_id", classID).Msg("Client attached to class events")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("class_id", classID).Msg("Client detached from class events")
			return

		case _, ok := <-ch:
			if !ok {
				return
			}
			h.writeSnapshot(c, reqCtx, classID)

		case <-keepAliveTicker.C:
			h.writeEvent(c, pingPayload)
		}
	}
}

func (h *EventsHandler) writeSnapshot(c *gin.Context, ctx context.Context, classID string) {
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	msgs, err := h.messageService.List(fetchCtx, classID, h.historyLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("class_id", classID).Msg("Snapshot fetch failed")
		return
	}

	payload, err := json.Marshal(ws.NewSnapshot(classID, msgs))
	if err != nil {
		return
	}
	h.writeEvent(c, payload)
}

func (h *EventsHandler) writeEvent(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
