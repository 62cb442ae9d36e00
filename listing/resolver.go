package listing

import (
	"bytes"
	"encoding/json"
)

// DiscriminatorField is the json property that selects the listing variant.
// The key is matched exactly; only its value is compared case-insensitively.
const DiscriminatorField = "listingType"

// Resolve inspects the discriminator of a parsed listing document and returns
// an empty instance of the matching variant. It does not populate any other
// field.
func Resolve(obj map[string]json.RawMessage) (Listing, error) {
	t, err := ParseType(discriminator(obj))
	if err != nil {
		return nil, err
	}
	return t.New(), nil
}

// discriminator returns the textual value of the discriminator property.
// Missing and null values yield "". Non-string scalars are returned verbatim
// so they surface as unknown values.
func discriminator(obj map[string]json.RawMessage) string {
	raw, ok := obj[DiscriminatorField]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
