package replay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/broadside/pkg/clients"
	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/messages"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/gorilla/websocket"
)

const (
	// SessionQueryParam picks the session to replay on /ws
	SessionQueryParam = "session"

	clientIDHeader = "X-Client-ID"
	closeTimeout   = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsHandler struct {
	repository     repositories.Repository
	viewers        *clients.ViewerManager
	defaultSession string
	delay          time.Duration
	logger         *log.Logger
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.pickSession(r)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to pick session: %v", err)
		http.Error(w, "Failed to pick session", http.StatusInternalServerError)
		return
	}
	frames, err := h.repository.LoadFrames(r.Context(), sessionID)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to load session %s: %v", sessionID, err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	clientID := r.Header.Get(clientIDHeader)
	logger := h.logger.With("session", sessionID).With("remote", conn.RemoteAddr().String())
	if clientID != "" {
		logger = logger.With("clientID", clientID)
	}

	viewerID, err := h.viewers.AddViewer(sessionID, clientID, conn.RemoteAddr().String())
	if err != nil {
		logger.Error("Failed to add viewer: %v", err)
		conn.Close()
		return
	}
	defer h.viewers.RemoveViewer(viewerID)
	logger = logger.With("viewerID", viewerID)
	logger.Info("Replaying %d frames", len(frames))

	h.handleWSConnection(r.Context(), conn, viewerID, frames, logger)
}

func (h *wsHandler) pickSession(r *http.Request) (string, error) {
	if id := r.URL.Query().Get(SessionQueryParam); id != "" {
		return id, nil
	}
	if h.defaultSession != "" {
		return h.defaultSession, nil
	}
	sessions, err := h.repository.ListSessions(r.Context())
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		return "", &repositories.ErrNotFound{}
	}
	return sessions[len(sessions)-1].ID, nil
}

// handleWSConnection sends frames with the configured delay while a reader
// logs whatever commands come back.
func (h *wsHandler) handleWSConnection(ctx context.Context, conn *websocket.Conn, viewerID uint32, frames []repositories.Frame, logger *log.Logger) {
	defer conn.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		logCommands(conn, logger)
	}()

	for i, frame := range frames {
		if i > 0 && h.delay > 0 {
			select {
			case <-time.After(h.delay):
			case <-readerDone:
				logger.Info("Client left after %d of %d frames", i, len(frames))
				return
			case <-ctx.Done():
				return
			}
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame.Raw); err != nil {
			logger.Error("Failed to write frame %d: %v", frame.Index, err)
			return
		}
		h.viewers.SetFramesSent(viewerID, i+1)
		logger.Debug("Sent frame %d: %s", frame.Index, frame.Raw)
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay finished")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout)); err != nil {
		logger.Error("Failed to send close: %v", err)
		return
	}
	select {
	case <-readerDone:
	case <-time.After(closeTimeout):
	}
	logger.Info("Replay finished")
}

func logCommands(conn *websocket.Conn, logger *log.Logger) {
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Error reading WebSocket message: %v", err)
			}
			logger.Trace("Connection closed")
			return
		}

		cmd, err := messages.DecodeCommand(b)
		if err != nil {
			logger.Warn("Received invalid command: %v", err)
			continue
		}
		switch c := cmd.(type) {
		case types.AddShip:
			logger.Info("Received AddShip at %s %s", c.Loc, c.Dir)
		case types.GuessPos:
			logger.Info("Received GuessPos at %s", c.Loc)
		default:
			logger.Info("Received %s", cmd.Type())
		}
	}
}
