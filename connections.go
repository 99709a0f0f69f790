package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// POST /connections with {"userId", "friendId"} links two profiles.
func connectHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		var req struct {
			UserID   userRef `json:"userId"`
			FriendID userRef `json:"friendId"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		userID, friendID := string(req.UserID), string(req.FriendID)

		if err := a.graph.Connect(userID, friendID); err != nil {
			switch {
			case errors.Is(err, match.ErrInvalidProfile):
				writeError(w, http.StatusBadRequest, "missing_fields")
			case errors.Is(err, match.ErrSelfConnection):
				writeError(w, http.StatusBadRequest, "self_connection")
			default:
				writeError(w, http.StatusInternalServerError, "graph_error")
			}
			return
		}
		a.persist("save_connection", func(ctx context.Context, st persister) error {
			return st.SaveConnection(ctx, userID, friendID)
		})
		a.log.Info("connection added", zap.String("user_id", userID), zap.String("friend_id", friendID))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"userId":    userID,
			"friendId":  friendID,
			"connected": true,
		})
	}
}

// Dispatcher for /connections/*
//
//	GET    /connections/{id}       neighbors of id
//	DELETE /connections/{a}/{b}    remove the edge
func connectionsDispatcher(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)
		if len(parts) < 2 || parts[0] != "connections" || parts[1] == "" {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(parts) == 2 && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"userId":      parts[1],
				"connections": a.graph.Neighbors(parts[1]),
			})
		case len(parts) == 3 && r.Method == http.MethodDelete:
			userID, friendID := parts[1], parts[2]
			a.graph.Disconnect(userID, friendID)
			a.persist("delete_connection", func(ctx context.Context, st persister) error {
				return st.DeleteConnection(ctx, userID, friendID)
			})
			w.WriteHeader(http.StatusNoContent)
		case len(parts) == 2 || len(parts) == 3:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		default:
			http.NotFound(w, r)
		}
	}
}
