package match

import "sort"

// Match is one ranked candidate for a user.
type Match struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}

// ScoreFunc scores candidate against the user a ranking is computed for.
type ScoreFunc func(user, candidate Profile) float64

// RankMatches ranks every other registered profile against userID with the
// full scoring function.
func RankMatches(reg *Registry, userID string) []Match {
	return Rank(reg, userID, Score)
}

// RankMatchesWithPreferences ranks using only the fields selected in prefs.
func RankMatchesWithPreferences(reg *Registry, userID string, prefs Preferences) []Match {
	return Rank(reg, userID, func(user, candidate Profile) float64 {
		return ScoreWithPreferences(user, candidate, prefs)
	})
}

// Rank scores every other profile in a point-in-time snapshot of the
// registry, keeps strictly positive scores and sorts them descending. Ties
// keep registry insertion order. An unknown user yields an empty result.
func Rank(reg *Registry, userID string, score ScoreFunc) []Match {
	user, ok := reg.Get(userID)
	if !ok {
		return []Match{}
	}

	candidates := reg.List()
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == userID {
			continue
		}
		if s := score(user, c); s > 0 {
			matches = append(matches, Match{UserID: c.ID, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
