package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/learnage/portal/internal/service"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams class chat snapshots over WebSocket.
type WSHandler struct {
	messageService *service.MessageService
	hub            *ws.Hub
	historyLimit   int
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(messageService *service.MessageService, hub *ws.Hub, historyLimit int, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		messageService: messageService,
		hub:            hub,
		historyLimit:   historyLimit,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ClassMessagesStream godoc
// WS /ws/v1/classes/:class_id/messages?token=
// Sends a snapshot on connect and after every change to the class's messages.
// The client may send {"action":"refresh"} or {"action":"ping"}.
func (h *WSHandler) ClassMessagesStream(c *gin.Context) {
	classID := c.Param("class_id")
	p, ok := classMember(c, classID)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	wsLog := h.log.With().
		Str("uid", p.UID).
		Str("class_id", classID).
		Logger()

	client := h.hub.Register(conn, classID)
	defer h.hub.Unregister(client)

	wsLog.Info().Msg("Chat client connected")
	h.sendSnapshot(c, client, classID, wsLog)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionRefresh:
			h.sendSnapshot(c, client, classID, wsLog)
		case ws.ActionPing:
			client.Send(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			client.Send(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}

func (h *WSHandler) sendSnapshot(c *gin.Context, client *ws.Client, classID string, wsLog zerolog.Logger) {
	msgs, err := h.messageService.List(c.Request.Context(), classID, h.historyLimit)
	if err != nil {
		wsLog.Error().Err(err).Msg("Snapshot fetch failed")
		client.Send(ws.ErrorResponse{Event: ws.EventError, Error: "failed to load messages"})
		return
	}
	client.Send(ws.NewSnapshot(classID, msgs))
}
