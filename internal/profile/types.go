package profile

import "strings"

// StorageKey is the single well-known key the profile blob lives under.
const StorageKey = "userData"

// DefaultVisaStatus fills work-authorization fields when the profile leaves
// visaStatus empty.
const DefaultVisaStatus = "Visa Subclass 500"

// Profile is the personal record used to fill application forms. The JSON
// keys match the blob the browser extension stored under userData.
type Profile struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	LinkedIn   string `json:"linkedin"`
	GitHub     string `json:"github"`
	VisaStatus string `json:"visaStatus,omitempty"`
}

// Default returns the profile seeded on first run and used whenever storage
// cannot be read.
func Default() Profile {
	return Profile{
		Name:       "Abraham Kuriakose",
		Email:      "abrahamkuriakosevit@gmail.com",
		Phone:      "+61494395881",
		Location:   "Ashfield, NSW, Australia",
		LinkedIn:   "abraham13202",
		GitHub:     "abraham13202",
		VisaStatus: DefaultVisaStatus,
	}
}

// GivenName returns FirstName, or the first word of Name.
func (p Profile) GivenName() string {
	if p.FirstName != "" {
		return p.FirstName
	}
	words := strings.Fields(p.Name)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// FamilyName returns LastName, or the last word of a multi-word Name.
func (p Profile) FamilyName() string {
	if p.LastName != "" {
		return p.LastName
	}
	words := strings.Fields(p.Name)
	if len(words) < 2 {
		return ""
	}
	return words[len(words)-1]
}

// WorkAuthorization returns VisaStatus or DefaultVisaStatus.
func (p Profile) WorkAuthorization() string {
	if p.VisaStatus != "" {
		return p.VisaStatus
	}
	return DefaultVisaStatus
}

// Merge returns p with every non-empty field of other laid over it.
func (p Profile) Merge(other Profile) Profile {
	for _, f := range fields {
		if v := *f.ptr(&other); v != "" {
			*f.ptr(&p) = v
		}
	}
	return p
}

type field struct {
	key string
	ptr func(p *Profile) *string
}

// fields lists the settable profile keys in display order.
var fields = []field{
	{"name", func(p *Profile) *string { return &p.Name }},
	{"firstName", func(p *Profile) *string { return &p.FirstName }},
	{"lastName", func(p *Profile) *string { return &p.LastName }},
	{"email", func(p *Profile) *string { return &p.Email }},
	{"phone", func(p *Profile) *string { return &p.Phone }},
	{"location", func(p *Profile) *string { return &p.Location }},
	{"linkedin", func(p *Profile) *string { return &p.LinkedIn }},
	{"github", func(p *Profile) *string { return &p.GitHub }},
	{"visaStatus", func(p *Profile) *string { return &p.VisaStatus }},
}

// Keys returns the valid field keys for SetField.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}
