package listing

import "strings"

// Type identifies one of the concrete listing variants.
type Type int

const (
	Residential Type = iota + 1
	Rental
	Land
	Rural
)

// Types lists the variants in the order they are matched.
var Types = []Type{Residential, Rental, Land, Rural}

func (t Type) String() string {
	switch t {
	case Residential:
		return "residential"
	case Rental:
		return "rental"
	case Land:
		return "land"
	case Rural:
		return "rural"
	}
	return "unknown"
}

// New returns a freshly allocated, empty listing of type t, or nil if t is
// not one of the known variants.
func (t Type) New() Listing {
	switch t {
	case Residential:
		return &ResidentialListing{}
	case Rental:
		return &RentalListing{}
	case Land:
		return &LandListing{}
	case Rural:
		return &RuralListing{}
	}
	return nil
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseType matches s case-insensitively against the known tags.
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return 0, &DiscriminatorError{Kind: MissingDiscriminator, Field: DiscriminatorField}
	}
	for _, t := range Types {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, &DiscriminatorError{Kind: UnknownDiscriminator, Field: DiscriminatorField, Value: s}
}

func legalValues() string {
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = t.String()
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
