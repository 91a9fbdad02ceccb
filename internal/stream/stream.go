// Package stream pushes session views to kiosk screens over a websocket.
//
// Every frame the server writes is a Frame. A screen may also send commands
// on the same socket; each one is dispatched to the session and a rejected
// command is answered with an error frame.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/workflow"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Frame is one server message.
type Frame struct {
	Type  string         `json:"type"`
	View  *workflow.View `json:"view,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Session is the part of workflow.Machine the stream needs.
type Session interface {
	Subscribe() (<-chan workflow.View, func())
	Dispatch(ctx context.Context, e workflow.Event) (workflow.View, error)
}

// Handler upgrades requests and streams views until the client leaves.
type Handler struct {
	session  Session
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. A nil checkOrigin allows every origin.
func NewHandler(session Session, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Stream upgrade failed", "error", err)
		return
	}
	slog.Info("Stream client connected", "remote_addr", r.RemoteAddr)

	views, unsubscribe := h.session.Subscribe()
	errs := make(chan string, 8)
	done := make(chan struct{})

	go h.readPump(conn, errs, done)
	writePump(conn, views, errs, done)

	unsubscribe()
	conn.Close()
	slog.Info("Stream client disconnected", "remote_addr", r.RemoteAddr)
}

// readPump dispatches inbound commands until the connection fails.
func (h *Handler) readPump(conn *websocket.Conn, errs chan<- string, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Stream closed unexpectedly", "error", err)
			}
			return
		}

		var cmd workflow.Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			report(errs, "malformed command: "+err.Error())
			continue
		}
		e, err := cmd.Event()
		if err != nil {
			report(errs, err.Error())
			continue
		}
		// The resulting view reaches the client through the subscription.
		if _, err := h.session.Dispatch(context.Background(), e); err != nil {
			slog.Debug("Stream command rejected", "type", cmd.Type, "error", err)
			report(errs, err.Error())
		}
	}
}

func report(errs chan<- string, msg string) {
	select {
	case errs <- msg:
	default:
	}
}

// writePump writes views, errors and pings until the reader stops, the
// subscription closes, or a write fails.
func writePump(conn *websocket.Conn, views <-chan workflow.View, errs <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-views:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(Frame{Type: "view", View: &v}); err != nil {
				return
			}
		case msg := <-errs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Frame{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
