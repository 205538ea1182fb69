package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = 54 * time.Second

	streamBuffer = 64
)

// Stream message types.
const (
	msgProgress = "progress"
	msgComplete = "complete"
)

// streamMessage is one frame on the progress websocket.
type streamMessage struct {
	Type     string                `json:"type"`
	Progress *model.SourceProgress `json:"progress,omitempty"`
	Run      *model.Run            `json:"run,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts requests without an Origin header and origins that
// match a configured CORS origin by prefix.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// handleStream sends every progress transition of a run, then the final run
// record. Finished runs get the final record immediately.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve before upgrading so unknown runs get a plain 404.
	lr, live := s.lookup(id)
	if !live {
		if _, err := s.store.GetRun(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "could not load run")
			return
		}
	}

	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("server: websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go readPump(conn, cancel)

	if live {
		updates, unsubscribe := lr.tracker.Subscribe(streamBuffer)
		defer unsubscribe()

		// Subscribe first so nothing falls between the snapshot and the feed.
		for _, p := range lr.tracker.Snapshot() {
			if !s.send(conn, streamMessage{Type: msgProgress, Progress: &p}) {
				return
			}
		}
		if !s.forward(ctx, conn, updates, lr.done) {
			return
		}
	}

	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		zap.L().Warn("server: load finished run", zap.String("run_id", id), zap.Error(err))
		return
	}
	if !s.send(conn, streamMessage{Type: msgComplete, Run: run}) {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
}

// forward relays updates until the run finishes. It reports false when the
// connection is gone.
func (s *Server) forward(ctx context.Context, conn *websocket.Conn, updates <-chan model.SourceProgress, done <-chan struct{}) bool {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case p, ok := <-updates:
			if !ok {
				return true
			}
			if !s.send(conn, streamMessage{Type: msgProgress, Progress: &p}) {
				return false
			}
		case <-done:
			// Drain what was published before the run ended.
			for {
				select {
				case p := <-updates:
					if !s.send(conn, streamMessage{Type: msgProgress, Progress: &p}) {
						return false
					}
				default:
					return true
				}
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return false
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg streamMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		zap.L().Debug("server: websocket write", zap.Error(err))
		return false
	}
	return true
}

// readPump discards client messages and cancels when the peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
