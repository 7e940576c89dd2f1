package jurisdiction

import (
	"sort"
	"strings"
)

// Code identifies an Australian state or territory wildlife authority
type Code string

const (
	ACT Code = "ACT"
	NSW Code = "NSW"
	VIC Code = "VIC"
	QLD Code = "QLD"
	WA  Code = "WA"
	SA  Code = "SA"
	TAS Code = "TAS"
	NT  Code = "NT"
)

// DefaultCode is used whenever an organisation has no usable jurisdiction configured
const DefaultCode = ACT

// AllCodes returns every supported jurisdiction in display order
func AllCodes() []Code {
	return []Code{ACT, NSW, VIC, QLD, WA, SA, TAS, NT}
}

// IsValid reports whether the code is one of the supported jurisdictions
func (c Code) IsValid() bool {
	switch c {
	case ACT, NSW, VIC, QLD, WA, SA, TAS, NT:
		return true
	}
	return false
}

func (c Code) String() string {
	return string(c)
}

// ParseCode normalises user input into a Code. The boolean is false when the
// input does not name a supported jurisdiction.
func ParseCode(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// FormID identifies one of the regulated record forms
type FormID string

const (
	FormReleaseChecklist FormID = "release_checklist"
	FormIncidentLog      FormID = "incident_log"
	FormHygieneLog       FormID = "hygiene_log"
	FormCarerLicence     FormID = "carer_licence"
)

// AllForms returns the fixed set of regulated forms
func AllForms() []FormID {
	return []FormID{FormReleaseChecklist, FormIncidentLog, FormHygieneLog, FormCarerLicence}
}

// IsValid reports whether the form identifier is known
func (f FormID) IsValid() bool {
	switch f {
	case FormReleaseChecklist, FormIncidentLog, FormHygieneLog, FormCarerLicence:
		return true
	}
	return false
}

// FormSet is an unordered set of forms
type FormSet map[FormID]struct{}

// NewFormSet builds a set from the given forms
func NewFormSet(forms ...FormID) FormSet {
	set := make(FormSet, len(forms))
	for _, f := range forms {
		set[f] = struct{}{}
	}
	return set
}

// Has reports whether the form is in the set
func (s FormSet) Has(f FormID) bool {
	_, ok := s[f]
	return ok
}

// Slice returns the forms sorted by identifier
func (s FormSet) Slice() []FormID {
	out := make([]FormID, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the set
func (s FormSet) Clone() FormSet {
	out := make(FormSet, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// DistanceRequirement is the minimum rescue-to-release distance a jurisdiction imposes
type DistanceRequirement struct {
	MinimumKm float64 `json:"minimum_km" yaml:"minimum_km"`
	Enforced  bool    `json:"enforced" yaml:"enforced"`
}

// Config holds the compliance rules of a single jurisdiction
type Config struct {
	Code               Code                `json:"code"`
	FullName           string              `json:"full_name"`
	EnabledForms       FormSet             `json:"-"`
	Distance           DistanceRequirement `json:"distance_requirement"`
	VetSignOffRequired bool                `json:"vet_sign_off_required"`
	RetentionYears     int                 `json:"retention_years"`
	CodeOfPractice     string              `json:"code_of_practice"`
}

func (c Config) clone() Config {
	c.EnabledForms = c.EnabledForms.Clone()
	return c
}
