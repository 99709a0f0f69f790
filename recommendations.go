package main

import (
	"net/http"
	"strings"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// detailedMatch is a ranked candidate with the candidate's profile attached.
type detailedMatch struct {
	UserID  string        `json:"userId"`
	Score   float64       `json:"score"`
	Profile match.Profile `json:"profile"`
}

// Dispatcher for /matches/* to route plain and detailed rankings
func matchesDispatcher(a *app) http.HandlerFunc {
	detailed := DataLoaderMiddleware(a.registry)(matchesDetailedHandler(a))
	return func(w http.ResponseWriter, r *http.Request) {
		parts := pathParts(r)
		if len(parts) < 2 || parts[0] != "matches" || parts[1] == "" {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(parts) == 2:
			matchesHandler(a, parts[1]).ServeHTTP(w, r)
		case len(parts) == 3 && parts[2] == "detailed":
			detailed.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}

// GET /matches/{id} ranks every other profile on all criteria.
// POST /matches/{id} with {"preferences": [...]} ranks on the listed criteria only.
func matchesHandler(a *app, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string][]match.Match{"matches": match.RankMatches(a.registry, id)})
		case http.MethodPost:
			var req struct {
				Preferences *match.Preferences `json:"preferences"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}
			var ranked []match.Match
			if req.Preferences == nil {
				ranked = match.RankMatches(a.registry, id)
			} else {
				ranked = match.RankMatchesWithPreferences(a.registry, id, *req.Preferences)
			}
			writeJSON(w, http.StatusOK, map[string][]match.Match{"matches": ranked})
		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	}
}

// GET /matches/{id}/detailed - ranking with the candidates' profiles
func matchesDetailedHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		id := strings.Split(strings.Trim(r.URL.Path, "/"), "/")[1]

		ranked := match.RankMatches(a.registry, id)
		loaders := GetDataLoadersFromContext(r.Context())
		if loaders == nil {
			loaders = NewDataLoaders(a.registry)
		}

		ids := make([]string, len(ranked))
		for i, m := range ranked {
			ids[i] = m.UserID
		}
		profiles, errs := loaders.ProfileLoader.LoadMany(r.Context(), ids)()

		results := make([]detailedMatch, 0, len(ranked))
		for i, m := range ranked {
			// Removed since ranking; leave it out.
			if len(errs) > i && errs[i] != nil {
				continue
			}
			results = append(results, detailedMatch{UserID: m.UserID, Score: m.Score, Profile: profiles[i]})
		}
		writeJSON(w, http.StatusOK, map[string][]detailedMatch{"matches": results})
	}
}

// POST /score with {"user1", "user2", "preferences"?}
func scoreHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		var req struct {
			User1       userRef            `json:"user1"`
			User2       userRef            `json:"user2"`
			Preferences *match.Preferences `json:"preferences"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.User1 == "" || req.User2 == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		p1, ok1 := a.registry.Get(string(req.User1))
		p2, ok2 := a.registry.Get(string(req.User2))
		if !ok1 || !ok2 {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		score := match.Score(p1, p2)
		if req.Preferences != nil {
			score = match.ScoreWithPreferences(p1, p2, *req.Preferences)
		}
		writeJSON(w, http.StatusOK, map[string]float64{"score": score})
	}
}
