package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// GET /users lists every profile; POST /users registers one.
func usersHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string][]match.Profile{"users": a.registry.List()})
		case http.MethodPost:
			registerProfile(a, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	}
}

func registerProfile(a *app, w http.ResponseWriter, r *http.Request) {
	var p match.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	added, err := a.registry.Add(p)
	if errors.Is(err, match.ErrInvalidProfile) {
		writeError(w, http.StatusBadRequest, "missing_id")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "registry_error")
		return
	}

	stored, _ := a.registry.Get(p.ID)
	if !added {
		writeJSON(w, http.StatusOK, stored)
		return
	}
	a.persist("save_profile", func(ctx context.Context, st persister) error {
		return st.SaveProfile(ctx, stored)
	})
	a.log.Info("profile registered", zap.String("user_id", stored.ID))
	writeJSON(w, http.StatusCreated, stored)
}

// Dispatcher for /users/* to route profile and presence lookups
func usersDispatcher(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)
		if len(parts) < 2 || parts[0] != "users" || parts[1] == "" {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(parts) == 2:
			userHandler(a, parts[1]).ServeHTTP(w, r)
		case len(parts) == 3 && parts[2] == "presence":
			presenceHandler(a, parts[1]).ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}

// GET, PATCH and DELETE /users/{id}
func userHandler(a *app, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			p, ok := a.registry.Get(id)
			if !ok {
				writeError(w, http.StatusNotFound, "not_found")
				return
			}
			writeJSON(w, http.StatusOK, p)

		case http.MethodPatch:
			var patch match.Profile
			if !decodeJSON(w, r, &patch) {
				return
			}
			if err := a.registry.Update(id, patch); errors.Is(err, match.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found")
				return
			} else if err != nil {
				writeError(w, http.StatusInternalServerError, "registry_error")
				return
			}
			updated, _ := a.registry.Get(id)
			a.persist("save_profile", func(ctx context.Context, st persister) error {
				return st.SaveProfile(ctx, updated)
			})
			writeJSON(w, http.StatusOK, updated)

		case http.MethodDelete:
			if err := a.registry.Remove(id); errors.Is(err, match.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found")
				return
			} else if err != nil {
				writeError(w, http.StatusInternalServerError, "registry_error")
				return
			}
			a.persist("delete_profile", func(ctx context.Context, st persister) error {
				return st.DeleteProfile(ctx, id)
			})
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	}
}
