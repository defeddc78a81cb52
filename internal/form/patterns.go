package form

// Category is the profile attribute an input represents.
type Category int

const (
	CategoryNone Category = iota
	CategoryName
	CategoryFirstName
	CategoryLastName
	CategoryEmail
	CategoryPhone
	CategoryLocation
	CategoryLinkedIn
	CategoryGitHub
	CategoryWorkAuth
)

var categoryNames = map[Category]string{
	CategoryNone:      "none",
	CategoryName:      "name",
	CategoryFirstName: "firstName",
	CategoryLastName:  "lastName",
	CategoryEmail:     "email",
	CategoryPhone:     "phone",
	CategoryLocation:  "location",
	CategoryLinkedIn:  "linkedin",
	CategoryGitHub:    "github",
	CategoryWorkAuth:  "workAuth",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// Rule recognises one category. A rule matches when any pattern is a
// substring of the hint, or when the element's declared type equals
// InputType.
type Rule struct {
	Category  Category
	Label     string
	Patterns  []string
	InputType string
}

// PatternTable is an ordered rule list; the first matching rule wins.
type PatternTable []Rule

// DefaultPatterns is the built-in table in priority order. The generic name
// rule precedes firstName and lastName, so hints such as "first_name" are
// claimed as Name.
var DefaultPatterns = PatternTable{
	{
		Category: CategoryName, Label: "Name",
		Patterns: []string{"name", "full_name", "fullname", "applicant_name", "firstname", "first_name",
			"candidate_name", "your_name", "full-name"},
	},
	{
		Category: CategoryFirstName, Label: "First Name",
		Patterns: []string{"firstname", "first_name", "first-name", "fname", "given_name"},
	},
	{
		Category: CategoryLastName, Label: "Last Name",
		Patterns: []string{"lastname", "last_name", "last-name", "lname", "family_name", "surname"},
	},
	{
		Category: CategoryEmail, Label: "Email", InputType: "email",
		Patterns: []string{"email", "email_address", "e-mail", "emailaddress", "mail", "contact_email"},
	},
	{
		Category: CategoryPhone, Label: "Phone", InputType: "tel",
		Patterns: []string{"phone", "telephone", "mobile", "phone_number", "phonenumber", "contact_number",
			"tel", "cell", "contact_phone"},
	},
	{
		Category: CategoryLocation, Label: "Location",
		Patterns: []string{"location", "address", "city", "current_location", "residence", "current_city"},
	},
	{
		Category: CategoryLinkedIn, Label: "LinkedIn",
		Patterns: []string{"linkedin", "linkedin_url", "linkedin_profile", "linkedin-url"},
	},
	{
		Category: CategoryGitHub, Label: "GitHub",
		Patterns: []string{"github", "github_url", "github_profile", "github-url", "portfolio"},
	},
	{
		Category: CategoryWorkAuth, Label: "Visa Status",
		Patterns: []string{"work_authorization", "visa", "visa_status", "work_permit", "authorized_to_work",
			"legal_to_work", "work_eligibility"},
	},
}

// Label returns the display label of c in t, or "" when t has no rule for c.
func (t PatternTable) Label(c Category) string {
	for _, r := range t {
		if r.Category == c {
			return r.Label
		}
	}
	return ""
}

// resumeTokens mark a file input as a resume upload.
var resumeTokens = []string{"resume", "cv"}

// ResumeLabel is recorded for every highlighted resume upload.
const ResumeLabel = "Resume Upload (highlighted)"
