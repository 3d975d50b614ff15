package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/rs/zerolog"
)

// StreamPath returns the push endpoint path of a class.
func StreamPath(classID string) string {
	return "/ws/v1/classes/" + url.PathEscape(classID) + "/messages"
}

// Stream is a push Subscription over WebSocket. The server sends a snapshot on
// connect and after every change; Refresh asks for one explicitly.
type Stream struct {
	conn    *websocket.Conn
	handler Handler
	log     zerolog.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// DialStream connects to the push endpoint. baseURL is the API's http(s) URL.
func DialStream(ctx context.Context, dialer *websocket.Dialer, baseURL, classID, token string, handler Handler, log zerolog.Logger) (*Stream, error) {
	if classID == "" {
		return nil, ErrNoClass
	}
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = StreamPath(classID)
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, resp, err := dialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial stream: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	s := &Stream{
		conn:    conn,
		handler: handler,
		log:     log.With().Str("component", "chat_stream").Str("class_id", classID).Logger(),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Stream) readLoop() {
	defer close(s.done)
	for {
		var ev ws.ResponseEnvelope
		if err := s.conn.ReadJSON(&ev); err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("Stream closed unexpectedly")
			}
			return
		}

		switch ev.Event {
		case ws.EventSnapshot:
			if s.closed.Load() {
				return
			}
			s.handler(ev.Messages)
		case ws.EventError:
			s.log.Warn().Str("error", ev.Error).Msg("Server reported an error")
		case ws.EventPong:
		default:
			s.log.Debug().Str("event", string(ev.Event)).Msg("Ignoring unknown event")
		}
	}
}

// Done is closed when the connection ends.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Refresh asks the server for a fresh snapshot.
func (s *Stream) Refresh() {
	if s.closed.Load() {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := ws.WriteTyped(s.conn, ws.RequestEnvelope{Action: ws.ActionRefresh}); err != nil {
		s.log.Warn().Err(err).Msg("Failed to request refresh")
	}
}

// Close ends the stream and waits for the reader to exit.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	<-s.done
	return err
}
