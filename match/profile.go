package match

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field names a scoring attribute of a profile.
type Field string

const (
	FieldInterests          Field = "interests"
	FieldLanguagesKnown     Field = "languagesKnown"
	FieldCommunicationStyle Field = "communicationStyle"
	FieldLoveStyle          Field = "loveStyle"
	FieldEducation          Field = "education"
	FieldRelationshipGoal   Field = "relationshipGoal"
	FieldAge                Field = "age"
	FieldReligion           Field = "religion"
	FieldZodiac             Field = "zodiac"
	FieldLiveIn             Field = "liveIn"
	FieldGender             Field = "gender"
	FieldCovidVaccineStatus Field = "covidVaccineStatus"
	FieldBloodGroup         Field = "bloodGroup"
	FieldAboutMe            Field = "aboutMe"
)

// intakeAliases maps the snake_case keys of the registration form onto field tags.
var intakeAliases = map[string]Field{
	"interest":             FieldInterests,
	"language_known":       FieldLanguagesKnown,
	"languages_known":      FieldLanguagesKnown,
	"languageKnown":        FieldLanguagesKnown,
	"communication_style":  FieldCommunicationStyle,
	"love_style":           FieldLoveStyle,
	"relationship_goal":    FieldRelationshipGoal,
	"live_in":              FieldLiveIn,
	"covid_vaccine_status": FieldCovidVaccineStatus,
	"blood_group":          FieldBloodGroup,
	"about_me":             FieldAboutMe,
}

// Profile is a user's matchable attribute record.
//
// A key present in Attrs means the field is defined for this profile, even if
// the value is empty. Fields that do not take part in scoring are kept in Extra.
type Profile struct {
	ID    string
	Attrs map[Field]string
	Age   *int
	Extra map[string]json.RawMessage
}

// NewProfile builds a profile from field/value pairs.
func NewProfile(id string, attrs map[Field]string) Profile {
	p := Profile{ID: id, Attrs: make(map[Field]string, len(attrs))}
	for f, v := range attrs {
		p.Attrs[f] = v
	}
	return p
}

// WithAge returns a copy of p with the age set.
func (p Profile) WithAge(age int) Profile {
	c := p.Clone()
	c.Age = &age
	return c
}

// Has reports whether the field is defined on the profile.
func (p Profile) Has(f Field) bool {
	if f == FieldAge {
		return p.Age != nil
	}
	_, ok := p.Attrs[f]
	return ok
}

// Value returns the field's text value and whether it is defined.
func (p Profile) Value(f Field) (string, bool) {
	if f == FieldAge {
		if p.Age == nil {
			return "", false
		}
		return strconv.Itoa(*p.Age), true
	}
	v, ok := p.Attrs[f]
	return v, ok
}

// Clone returns a deep copy so callers can't mutate registry state.
func (p Profile) Clone() Profile {
	c := Profile{ID: p.ID}
	if p.Attrs != nil {
		c.Attrs = make(map[Field]string, len(p.Attrs))
		for k, v := range p.Attrs {
			c.Attrs[k] = v
		}
	}
	if p.Age != nil {
		age := *p.Age
		c.Age = &age
	}
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// merge applies every key defined on patch to p.
func (p *Profile) merge(patch Profile) {
	if len(patch.Attrs) > 0 && p.Attrs == nil {
		p.Attrs = make(map[Field]string, len(patch.Attrs))
	}
	for k, v := range patch.Attrs {
		p.Attrs[k] = v
	}
	if patch.Age != nil {
		age := *patch.Age
		p.Age = &age
	}
	if len(patch.Extra) > 0 && p.Extra == nil {
		p.Extra = make(map[string]json.RawMessage, len(patch.Extra))
	}
	for k, v := range patch.Extra {
		p.Extra[k] = append(json.RawMessage(nil), v...)
	}
}

// MarshalJSON writes the profile as one flat object.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attrs)+len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	for f, v := range p.Attrs {
		out[string(f)] = v
	}
	if p.Age != nil {
		out[string(FieldAge)] = *p.Age
	}
	out["id"] = p.ID
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat profile object. It does not validate the id;
// the registry does that on Add.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Profile{}
	// Deterministic order so a canonical key always beats its alias.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		_, ai := intakeAliases[keys[i]]
		_, aj := intakeAliases[keys[j]]
		if ai != aj {
			return ai
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		val := raw[key]
		switch {
		case key == "id" || key == "user":
			id, err := decodeText(val)
			if err != nil {
				return fmt.Errorf("profile id: %w", err)
			}
			if key == "user" && p.ID != "" {
				continue
			}
			p.ID = id
		case key == string(FieldAge):
			age, ok, err := decodeAge(val)
			if err != nil {
				return fmt.Errorf("profile age: %w", err)
			}
			if ok {
				p.Age = &age
			}
		case isScoringField(Field(key)):
			p.setAttr(Field(key), val)
		default:
			if f, ok := intakeAliases[key]; ok {
				p.setAttr(f, val)
				continue
			}
			if p.Extra == nil {
				p.Extra = make(map[string]json.RawMessage)
			}
			p.Extra[key] = append(json.RawMessage(nil), val...)
		}
	}
	return nil
}

func (p *Profile) setAttr(f Field, val json.RawMessage) {
	if p.Attrs == nil {
		p.Attrs = make(map[Field]string)
	}
	text, err := decodeText(val)
	if err != nil {
		// Arrays and objects keep their literal JSON text.
		text = string(bytes.TrimSpace(val))
	}
	p.Attrs[f] = text
}

// decodeText accepts strings, numbers, booleans and null.
func decodeText(val json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(val)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("unexpected %s", trimmed[:1])
	default:
		return string(trimmed), nil
	}
}

// maxAge bounds accepted ages so out-of-range input can't collapse into the
// same integer and score as a match.
const maxAge = 150

func decodeAge(val json.RawMessage) (int, bool, error) {
	text, err := decodeText(val)
	if err != nil {
		return 0, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%q is not a whole number", text)
	}
	if f < 0 || f > maxAge {
		return 0, false, fmt.Errorf("%q out of range 0..%d", text, maxAge)
	}
	return int(f), true, nil
}
