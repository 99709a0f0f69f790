package main

import (
	"fmt"
	"math/rand"
	"strings"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

var (
	interests          = []string{"music", "reading", "sports", "hiking", "cooking", "gaming", "art", "travel", "photography", "chess", "yoga", "film"}
	languages          = []string{"English", "Spanish", "French", "German", "Estonian", "Finnish", "Russian", "Italian"}
	communicationStyle = []string{"Direct", "Thoughtful", "Playful", "Reserved"}
	loveStyle          = []string{"Quality time", "Words of affirmation", "Acts of service", "Gifts", "Physical touch"}
	education          = []string{"High school", "College", "University", "PhD"}
	relationshipGoal   = []string{"long-term", "short-term", "friendship", "not sure"}
	religion           = []string{"None", "Christian", "Muslim", "Buddhist", "Hindu", "Jewish", "Spiritual"}
	zodiac             = []string{"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo", "Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces"}
	cities             = []string{"Tallinn", "Tartu", "Helsinki", "Riga", "Berlin", "Paris"}
	genders            = []string{"female", "male", "non-binary"}
	vaccine            = []string{"Vaccinated", "Not vaccinated", "Prefer not to say"}
	bloodGroups        = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	aboutFragments     = []string{
		"Weekend hiker and weekday coder.",
		"Looking for someone to share long dinners with.",
		"Always planning the next trip.",
		"Bookworm with a soft spot for old films.",
		"Board games, coffee and good conversation.",
	}
)

// generateProfiles builds n profiles with ids "1".."n".
func generateProfiles(r *rand.Rand, n int) []match.Profile {
	out := make([]match.Profile, 0, n)
	for i := 1; i <= n; i++ {
		p := match.NewProfile(fmt.Sprint(i), map[match.Field]string{
			match.FieldInterests:          pickSome(r, interests, 1, 4),
			match.FieldLanguagesKnown:     pickSome(r, languages, 1, 3),
			match.FieldCommunicationStyle: pick(r, communicationStyle),
			match.FieldLoveStyle:          pick(r, loveStyle),
			match.FieldEducation:          pick(r, education),
			match.FieldRelationshipGoal:   pick(r, relationshipGoal),
			match.FieldReligion:           pick(r, religion),
			match.FieldZodiac:             pick(r, zodiac),
			match.FieldLiveIn:             pick(r, cities),
			match.FieldGender:             pick(r, genders),
			match.FieldCovidVaccineStatus: pick(r, vaccine),
			match.FieldBloodGroup:         pick(r, bloodGroups),
			match.FieldAboutMe:            pick(r, aboutFragments),
		}).WithAge(18 + r.Intn(43))
		out = append(out, p)
	}
	return out
}

// generateConnections links each pair with probability rate. The first two
// profiles are always linked.
func generateConnections(r *rand.Rand, profiles []match.Profile, rate float64) [][2]string {
	var edges [][2]string
	if len(profiles) >= 2 {
		edges = append(edges, [2]string{profiles[0].ID, profiles[1].ID})
	}
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			if i == 0 && j == 1 {
				continue
			}
			if r.Float64() < rate {
				edges = append(edges, [2]string{profiles[i].ID, profiles[j].ID})
			}
		}
	}
	return edges
}

func pick(r *rand.Rand, from []string) string {
	return from[r.Intn(len(from))]
}

// pickSome joins between min and max distinct values.
func pickSome(r *rand.Rand, from []string, min, max int) string {
	n := min + r.Intn(max-min+1)
	idx := r.Perm(len(from))[:n]
	picked := make([]string, n)
	for i, k := range idx {
		picked[i] = from[k]
	}
	return strings.Join(picked, ",")
}
