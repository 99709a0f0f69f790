package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreferences(t *testing.T) {
	p := ParsePreferences("live_in", "about_me", "interest", "bogus", "zodiac")

	assert.Equal(t, []Field{FieldInterests, FieldZodiac, FieldLiveIn, FieldAboutMe}, p.Fields())
	assert.Equal(t, 4, p.Len())
	assert.False(t, p.Contains(Field("bogus")))
	assert.Equal(t, len(rules), AllPreferences().Len())
}

func TestPreferencesJSON(t *testing.T) {
	t.Run("object keys select fields", func(t *testing.T) {
		var p Preferences
		require.NoError(t, json.Unmarshal([]byte(`{"religion": true, "live_in": false, "height": 3}`), &p))
		assert.Equal(t, []Field{FieldReligion, FieldLiveIn}, p.Fields())
	})

	t.Run("array of names", func(t *testing.T) {
		var p Preferences
		require.NoError(t, json.Unmarshal([]byte(`["education","gender"]`), &p))
		assert.Equal(t, []Field{FieldEducation, FieldGender}, p.Fields())

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `["education","gender"]`, string(data))
	})

	t.Run("null selects nothing", func(t *testing.T) {
		var p Preferences
		require.NoError(t, json.Unmarshal([]byte(`null`), &p))
		assert.Zero(t, p.Len())
	})

	t.Run("scalar is rejected", func(t *testing.T) {
		var p Preferences
		assert.Error(t, json.Unmarshal([]byte(`"religion"`), &p))
	})
}
