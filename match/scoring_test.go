package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func alice() Profile {
	return NewProfile("alice", map[Field]string{
		FieldInterests:          "music,reading",
		FieldEducation:          "University",
		FieldReligion:           "None",
		FieldCovidVaccineStatus: "Vaccinated",
		FieldLanguagesKnown:     "English,Spanish",
	})
}

func bob() Profile {
	return NewProfile("bob", map[Field]string{
		FieldInterests:          "music,sports",
		FieldEducation:          "University",
		FieldReligion:           "None",
		FieldCovidVaccineStatus: "Vaccinated",
		FieldLanguagesKnown:     "English,French",
	})
}

func TestScoreWithPreferencesAliceBob(t *testing.T) {
	prefs := ParsePreferences("interests", "education", "religion", "covidVaccineStatus", "languagesKnown")

	// music (10) + University (15) + religion (10) + covid (10) + English (10)
	assert.Equal(t, 55.0, ScoreWithPreferences(alice(), bob(), prefs))
	assert.Equal(t, 55.0, Score(alice(), bob()))
}

func TestScoreFieldStrategies(t *testing.T) {
	t.Run("overlap trims tokens and drops empties", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{FieldInterests: " music , art ,,"})
		b := NewProfile("b", map[Field]string{FieldInterests: "art"})
		assert.Equal(t, 10.0, Score(a, b))
	})

	t.Run("overlap is case sensitive", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{FieldInterests: "Music"})
		b := NewProfile("b", map[Field]string{FieldInterests: "music"})
		assert.Zero(t, Score(a, b))
	})

	t.Run("overlap weights differ per field", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{
			FieldCommunicationStyle: "Direct",
			FieldLoveStyle:          "Quality time",
			FieldRelationshipGoal:   "long-term",
		})
		b := NewProfile("b", map[Field]string{
			FieldCommunicationStyle: "Direct",
			FieldLoveStyle:          "Quality time",
			FieldRelationshipGoal:   "long-term",
		})
		assert.Equal(t, 25.0, Score(a, b))
	})

	t.Run("repeated tokens match up to the smaller count", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{FieldInterests: "chess,chess"})
		b := NewProfile("b", map[Field]string{FieldInterests: "chess"})
		c := NewProfile("c", map[Field]string{FieldInterests: "chess,chess,go"})
		assert.Equal(t, 10.0, Score(a, b))
		assert.Equal(t, 10.0, Score(b, a))
		assert.Equal(t, 20.0, Score(a, c))
	})

	t.Run("age is a threshold bonus", func(t *testing.T) {
		a := NewProfile("a", nil).WithAge(29)
		assert.Equal(t, 20.0, Score(a, NewProfile("b", nil).WithAge(27)))
		assert.Equal(t, 20.0, Score(a, NewProfile("b", nil).WithAge(34)))
		assert.Zero(t, Score(a, NewProfile("b", nil).WithAge(35)))
		assert.Zero(t, Score(a, NewProfile("b", nil)))
	})

	t.Run("equality fields", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{
			FieldReligion:   "None",
			FieldZodiac:     "Taurus",
			FieldLiveIn:     "New York",
			FieldGender:     "female",
			FieldBloodGroup: "O+",
		})
		b := a.Clone()
		b.ID = "b"
		assert.Equal(t, 50.0, Score(a, b))

		b.Attrs[FieldLiveIn] = "new york"
		assert.Equal(t, 30.0, Score(a, b), "equality is case sensitive")

		delete(b.Attrs, FieldZodiac)
		assert.Equal(t, 25.0, Score(a, b), "field defined on one side only")
	})

	t.Run("about me length ratio", func(t *testing.T) {
		a := NewProfile("a", map[Field]string{FieldAboutMe: "  Hello  "})
		b := NewProfile("b", map[Field]string{FieldAboutMe: "HELLO WORLD"})
		assert.InDelta(t, 5.0/11.0*10, Score(a, b), 1e-9)

		empty := NewProfile("c", map[Field]string{FieldAboutMe: ""})
		assert.Zero(t, Score(a, empty))
		assert.Zero(t, Score(a, NewProfile("d", nil)))
	})

	t.Run("no shared fields", func(t *testing.T) {
		assert.Zero(t, Score(NewProfile("a", nil), NewProfile("b", nil)))
	})
}

func TestScoreSymmetricAndNonNegative(t *testing.T) {
	profiles := []Profile{
		alice(),
		bob(),
		NewProfile("x", map[Field]string{FieldInterests: "chess,chess,go", FieldAboutMe: "short"}).WithAge(40),
		NewProfile("y", map[Field]string{FieldInterests: "chess", FieldAboutMe: "a much longer text", FieldReligion: ""}).WithAge(44),
		NewProfile("z", map[Field]string{FieldReligion: "", FieldLanguagesKnown: ",,English,English"}),
		NewProfile("empty", nil),
	}
	for _, u := range profiles {
		for _, v := range profiles {
			s := Score(u, v)
			assert.Equal(t, s, Score(v, u), "score(%s,%s)", u.ID, v.ID)
			assert.GreaterOrEqual(t, s, 0.0)
		}
	}
}

func TestScoreWithPreferences(t *testing.T) {
	a := NewProfile("a", map[Field]string{
		FieldLiveIn:    "Dhaka",
		FieldAboutMe:   "hello",
		FieldReligion:  "None",
		FieldInterests: "music",
	}).WithAge(30)
	b := NewProfile("b", map[Field]string{
		FieldLiveIn:    "Dhaka",
		FieldAboutMe:   "hello",
		FieldReligion:  "None",
		FieldInterests: "music",
	}).WithAge(31)

	t.Run("aliases route to field handlers", func(t *testing.T) {
		assert.Equal(t, 20.0, ScoreWithPreferences(a, b, ParsePreferences("live_in")))
		assert.Equal(t, 10.0, ScoreWithPreferences(a, b, ParsePreferences("about_me")))
		assert.Equal(t, 20.0, ScoreWithPreferences(a, b, ParsePreferences("live_in", "liveIn")))
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		assert.Zero(t, ScoreWithPreferences(a, b, ParsePreferences("height", "favouriteFood")))
		assert.Equal(t, 10.0, ScoreWithPreferences(a, b, ParsePreferences("height", "religion")))
	})

	t.Run("equality requires the field on the first profile", func(t *testing.T) {
		c := b.Clone()
		delete(c.Attrs, FieldReligion)
		assert.Zero(t, ScoreWithPreferences(c, b, ParsePreferences("religion")))
		assert.Zero(t, ScoreWithPreferences(b, c, ParsePreferences("religion")))
	})

	t.Run("empty selection scores nothing", func(t *testing.T) {
		assert.Zero(t, ScoreWithPreferences(a, b, Preferences{}))
	})

	t.Run("all fields equals full score", func(t *testing.T) {
		assert.Equal(t, Score(a, b), ScoreWithPreferences(a, b, AllPreferences()))
	})
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, "overlap", overlap.String())
	assert.Equal(t, "text-similarity", textSimilarity.String())

	w, ok := Weight(FieldLiveIn)
	assert.True(t, ok)
	assert.Equal(t, 20.0, w)

	_, ok = Weight(Field("height"))
	assert.False(t, ok)
	assert.Len(t, Fields(), 14)
}
