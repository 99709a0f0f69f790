package main

import (
	"net/http"

	"go.uber.org/zap"
)

// GET /users/{id}/presence
func presenceHandler(a *app, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		if !a.registry.Has(id) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":     id,
			"online": isOnlineNow(a, r, id),
		})
	}
}

// isOnlineNow checks for a live session on this instance first, then the
// shared presence store.
func isOnlineNow(a *app, r *http.Request, id string) bool {
	if a.registry.Online(id) {
		return true
	}
	if a.presence == nil {
		return false
	}
	online, err := a.presence.IsOnline(r.Context(), id)
	if err != nil {
		// Not critical. If it fails, assume the user is offline.
		a.log.Warn("presence lookup", zap.String("user_id", id), zap.Error(err))
		return false
	}
	return online
}
