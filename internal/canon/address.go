package canon

import (
	"regexp"
	"strings"

	"github.com/yourorg/listing-api/listing"
)

var rePunct = regexp.MustCompile(`[^A-Za-z0-9\s]`)

type Normalized struct {
	Line1       string
	Suburb      string
	State       string
	Postcode    string
	PropertyKey string
}

// Canonicalize normalizes a listing address and computes a stable property key.
// Unit and suite designators are dropped so every unit of a parcel shares a key.
func Canonicalize(a *listing.Address) Normalized {
	if a == nil {
		return Normalized{}
	}
	line1 := strings.TrimSpace(a.StreetNumber + " " + a.Street)
	n1 := strings.ToUpper(line1)
	n1 = stripUnit(n1)
	n1 = rePunct.ReplaceAllString(n1, " ")
	n1 = abbreviateSuffix(n1)
	n1 = collapseSpaces(n1)

	suburb := a.Suburb
	if suburb == "" {
		suburb = a.Municipality
	}
	sub := collapseSpaces(rePunct.ReplaceAllString(strings.ToUpper(strings.TrimSpace(suburb)), " "))
	st := stateAbbrev(collapseSpaces(strings.ToUpper(strings.TrimSpace(a.State))))
	pc := trimPostcode(a.Postcode)

	n := Normalized{Line1: n1, Suburb: sub, State: st, Postcode: pc}
	if n1 == "" || (sub == "" && pc == "") {
		return n
	}
	n.PropertyKey = strings.ToLower(n1 + "|" + sub + "|" + st + "|" + pc)
	return n
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimPostcode(z string) string {
	z = strings.TrimSpace(z)
	if len(z) > 5 {
		return z[:5]
	}
	return z
}

func stripUnit(s string) string {
	up := " " + s + " "
	for _, t := range []string{" APT ", " UNIT ", " STE ", " SUITE ", " #"} {
		if i := strings.Index(up, t); i >= 0 {
			return strings.TrimSpace(up[:i])
		}
	}
	// "3/12 SMITH ST" style unit prefixes
	if i := strings.Index(s, "/"); i > 0 && i < 6 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}

var suffixes = map[string]string{
	"STREET":    "ST",
	"ROAD":      "RD",
	"AVENUE":    "AVE",
	"BOULEVARD": "BLVD",
	"DRIVE":     "DR",
	"LANE":      "LN",
	"COURT":     "CT",
	"CIRCLE":    "CIR",
	"TERRACE":   "TER",
	"PLACE":     "PL",
	"PARADE":    "PDE",
	"CRESCENT":  "CRES",
	"PARKWAY":   "PKWY",
	"HIGHWAY":   "HWY",
}

func abbreviateSuffix(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i == 0 {
			continue
		}
		if v, ok := suffixes[w]; ok {
			words[i] = v
		}
	}
	return strings.Join(words, " ")
}

var states = map[string]string{
	// Australia
	"NEW SOUTH WALES": "NSW", "VICTORIA": "VIC", "QUEENSLAND": "QLD", "SOUTH AUSTRALIA": "SA",
	"WESTERN AUSTRALIA": "WA", "TASMANIA": "TAS", "NORTHERN TERRITORY": "NT", "AUSTRALIAN CAPITAL TERRITORY": "ACT",
	// United States
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA", "COLORADO": "CO",
	"CONNECTICUT": "CT", "DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA",
	"MAINE": "ME", "MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC",
	"NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA",
	"RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY",
}

func stateAbbrev(s string) string {
	if len(s) <= 3 {
		return s
	}
	if v, ok := states[s]; ok {
		return v
	}
	return s
}
