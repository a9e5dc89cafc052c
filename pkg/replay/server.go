package replay

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/broadside/pkg/clients"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/replay/middleware"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/gorilla/mux"
)

// ReplayServer plays journaled sessions back to a client as if it were the
// game server. It sends frames and logs commands; it has no game rules.
type ReplayServer struct {
	server  *http.Server
	router  *mux.Router
	viewers *clients.ViewerManager
	logger  *log.Logger
}

type NewReplayServerOptions struct {
	Addr       string
	Repository repositories.Repository
	// Session is replayed when the client does not ask for one. When empty
	// the most recent session is used.
	Session string
	// Delay between frames.
	Delay time.Duration
	// Token guards the session and viewer listings when set.
	Token  string
	Logger *log.Logger
}

// NewReplayServer creates a new http.Server for replaying sessions
func NewReplayServer(opts NewReplayServerOptions) *ReplayServer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	events := clients.NewViewerEventManager()
	events.RegisterHandler(func(event clients.ViewerEvent) {
		logger.Info("Viewer %d %s (session %s)", event.ViewerID, event.Type, event.SessionID)
	})
	viewers := clients.NewViewerManager(events)

	ws := &wsHandler{
		repository:     opts.Repository,
		viewers:        viewers,
		defaultSession: opts.Session,
		delay:          opts.Delay,
		logger:         logger,
	}

	router := mux.NewRouter()
	router.Use(middleware.NewLoggingMiddleware(logger))
	router.Handle("/ws", ws).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.NewTokenMiddleware(opts.Token, logger))
	api.HandleFunc("/sessions", HandleListSessions(opts.Repository, logger)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionID}", HandleGetSession(opts.Repository, logger)).Methods(http.MethodGet)
	api.HandleFunc("/viewers", HandleListViewers(viewers, logger)).Methods(http.MethodGet)

	return &ReplayServer{
		server: &http.Server{
			Addr:    opts.Addr,
			Handler: router,
		},
		router:  router,
		viewers: viewers,
		logger:  logger,
	}
}

// Handler returns the server's routes.
func (s *ReplayServer) Handler() http.Handler {
	return s.router
}

// Viewers returns the clients currently watching a replay.
func (s *ReplayServer) Viewers() []clients.Viewer {
	return s.viewers.GetViewers()
}

// Start starts the ReplayServer and blocks until it stops
func (s *ReplayServer) Start() {
	s.logger.Info("Replay server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("Replay server closed")
			return
		}
		s.logger.Error("Replay server error: %v", err)
	}
}

// Stop stops the ReplayServer
func (s *ReplayServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
