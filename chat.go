package main

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newUpgrader(a *app) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(a.cfg.CORSOrigins))
	for _, o := range a.cfg.CORSOrigins {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || a.cfg.development() {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// GET /ws/chat upgrades to a relay session for the identity in the request.
// An identity that names no profile is accepted at the HTTP level and then
// closed by the relay with a policy violation.
func wsChatHandler(a *app) http.HandlerFunc {
	upgrader := newUpgrader(a)
	secret := []byte(a.cfg.JWTSecret)
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r, secret)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "missing_identity")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Warn("ws upgrade", zap.String("identity", identity), zap.Error(err))
			return
		}
		// Blocks until the peer goes away.
		_ = a.relay.ServeWebSocket(conn, identity)
	}
}
