package match

import (
	"strings"
	"unicode/utf8"
)

// strategy is how a field's two values turn into points.
type strategy int

const (
	// overlap: weight per token shared by both comma-separated lists.
	overlap strategy = iota
	// equality: fixed weight when both values are defined and identical.
	equality
	// textSimilarity: length ratio of the normalized texts, scaled to weight.
	textSimilarity
	// threshold: fixed weight when two numbers are within ageWindow.
	threshold
)

func (s strategy) String() string {
	switch s {
	case overlap:
		return "overlap"
	case equality:
		return "equality"
	case textSimilarity:
		return "text-similarity"
	case threshold:
		return "threshold"
	default:
		return "unknown"
	}
}

const ageWindow = 5

type rule struct {
	field  Field
	kind   strategy
	weight float64
}

// rules is the scoring table. Order only affects floating point summation.
var rules = []rule{
	{FieldInterests, overlap, 10},
	{FieldLanguagesKnown, overlap, 10},
	{FieldCommunicationStyle, overlap, 5},
	{FieldLoveStyle, overlap, 5},
	{FieldEducation, overlap, 15},
	{FieldRelationshipGoal, overlap, 15},
	{FieldAge, threshold, 20},
	{FieldReligion, equality, 10},
	{FieldZodiac, equality, 5},
	{FieldLiveIn, equality, 20},
	{FieldGender, equality, 10},
	{FieldCovidVaccineStatus, equality, 10},
	{FieldBloodGroup, equality, 5},
	{FieldAboutMe, textSimilarity, 10},
}

var rulesByField = func() map[Field]rule {
	m := make(map[Field]rule, len(rules))
	for _, r := range rules {
		m[r.field] = r
	}
	return m
}()

func isScoringField(f Field) bool {
	_, ok := rulesByField[f]
	return ok
}

// Weight returns the points a field is worth and whether it is scored at all.
// For overlap fields the weight is per shared token.
func Weight(f Field) (float64, bool) {
	r, ok := rulesByField[f]
	return r.weight, ok
}

// Fields lists every scored field in table order.
func Fields() []Field {
	out := make([]Field, len(rules))
	for i, r := range rules {
		out[i] = r.field
	}
	return out
}

// Score computes the full compatibility score of two profiles.
// Score(a, b) == Score(b, a) for all inputs, and the result is never negative.
func Score(a, b Profile) float64 {
	total := 0.0
	for _, r := range rules {
		total += r.apply(a, b)
	}
	return total
}

// ScoreWithPreferences scores only the fields named in prefs, with the same
// weights and semantics as Score.
func ScoreWithPreferences(a, b Profile, prefs Preferences) float64 {
	total := 0.0
	for _, r := range rules {
		if !prefs.Contains(r.field) {
			continue
		}
		total += r.apply(a, b)
	}
	return total
}

func (r rule) apply(a, b Profile) float64 {
	aHas, bHas := a.Has(r.field), b.Has(r.field)
	if !aHas && !bHas {
		return 0
	}
	switch r.kind {
	case overlap:
		return overlapScore(a.Attrs[r.field], b.Attrs[r.field], r.weight)
	case equality:
		if !aHas || !bHas {
			return 0
		}
		return equalityScore(a.Attrs[r.field], b.Attrs[r.field], r.weight)
	case threshold:
		if a.Age == nil || b.Age == nil {
			return 0
		}
		return thresholdScore(*a.Age, *b.Age, ageWindow, r.weight)
	case textSimilarity:
		return textSimilarityScore(a.Attrs[r.field], b.Attrs[r.field], r.weight)
	}
	return 0
}

// overlapScore counts tokens shared by both lists. A token repeated on both
// sides matches as many times as it appears on the side with fewer copies.
// Counting every occurrence on one side that the other side contains would
// score "a,a" against "a" as 2 one way and 1 the other; the minimum keeps
// Score symmetric.
func overlapScore(a, b string, weight float64) float64 {
	left, right := splitTokens(a), splitTokens(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	remaining := make(map[string]int, len(right))
	for _, t := range right {
		remaining[t]++
	}
	shared := 0
	for _, t := range left {
		if remaining[t] > 0 {
			remaining[t]--
			shared++
		}
	}
	return float64(shared) * weight
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// equalityScore is case-sensitive with no normalization.
func equalityScore(a, b string, weight float64) float64 {
	if a == b {
		return weight
	}
	return 0
}

func thresholdScore(a, b, window int, weight float64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff <= window {
		return weight
	}
	return 0
}

// textSimilarityScore is a length-ratio proxy, not semantic similarity.
func textSimilarityScore(a, b string, max float64) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb) * max
}
