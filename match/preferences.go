package match

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// preferenceAliases routes request keys that differ from the field tags.
var preferenceAliases = map[string]Field{
	"live_in":       FieldLiveIn,
	"about_me":      FieldAboutMe,
	"interest":      FieldInterests,
	"languageKnown": FieldLanguagesKnown,
}

// Preferences is the set of fields a caller wants considered in a targeted
// match query. The zero value selects nothing.
type Preferences struct {
	fields map[Field]struct{}
}

// ParsePreferences builds a preference set from field names. Aliases are
// resolved and unrecognized names are ignored.
func ParsePreferences(keys ...string) Preferences {
	p := Preferences{fields: make(map[Field]struct{}, len(keys))}
	for _, k := range keys {
		if f, ok := lookupPreference(k); ok {
			p.fields[f] = struct{}{}
		}
	}
	return p
}

// AllPreferences selects every scored field.
func AllPreferences() Preferences {
	keys := make([]string, len(rules))
	for i, r := range rules {
		keys[i] = string(r.field)
	}
	return ParsePreferences(keys...)
}

func lookupPreference(key string) (Field, bool) {
	if f, ok := preferenceAliases[key]; ok {
		return f, true
	}
	if isScoringField(Field(key)) {
		return Field(key), true
	}
	return "", false
}

// Contains reports whether the field is selected.
func (p Preferences) Contains(f Field) bool {
	_, ok := p.fields[f]
	return ok
}

// Len returns the number of selected fields.
func (p Preferences) Len() int { return len(p.fields) }

// Fields returns the selected fields in scoring table order.
func (p Preferences) Fields() []Field {
	var out []Field
	for _, r := range rules {
		if p.Contains(r.field) {
			out = append(out, r.field)
		}
	}
	return out
}

// MarshalJSON writes the selection as an array of field names.
func (p Preferences) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(p.fields))
	for _, f := range p.Fields() {
		names = append(names, string(f))
	}
	return json.Marshal(names)
}

// UnmarshalJSON accepts an array of names or an object whose keys are the
// names. Object values are not inspected: a key being present selects it.
func (p *Preferences) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = ParsePreferences()
		return nil
	}
	switch trimmed[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
		*p = ParsePreferences(names...)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		*p = ParsePreferences(keys...)
	default:
		return errors.New("preferences: expected array or object")
	}
	return nil
}
