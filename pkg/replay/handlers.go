package replay

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/broadside/pkg/clients"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/gorilla/mux"
)

func HandleListSessions(repository repositories.Repository, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := repository.ListSessions(r.Context())
		if err != nil {
			logger.Error("failed to list sessions: %v", err)
			http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
			return
		}

		writeJSON(w, sessions, logger)
	}
}

func HandleGetSession(repository repositories.Repository, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]
		frames, err := repository.LoadFrames(r.Context(), sessionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Session not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to load session %s: %v", sessionID, err)
			http.Error(w, "Failed to load session", http.StatusInternalServerError)
			return
		}

		writeJSON(w, frames, logger)
	}
}

func HandleListViewers(viewers *clients.ViewerManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, viewers.GetViewers(), logger)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
