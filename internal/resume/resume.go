// Package resume pulls contact details out of a resume so they can be
// merged into the stored profile.
package resume

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kalambet/jobfill/internal/profile"
)

// maxNameLen bounds the line accepted as the candidate's name. Longer first
// lines are almost always a summary paragraph.
const maxNameLen = 60

const maxNameWords = 4

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d \t\-().]{7,}\d`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/([A-Za-z0-9_\-]+)`)
	githubRe   = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9_\-]+)`)
)

// ExtractText returns the plain text of the PDF at path.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(b), nil
}

// Parse extracts a partial profile from resume text. Fields it cannot find
// are left empty so the result can be merged with profile.Profile.Merge.
func Parse(text string) profile.Profile {
	var p profile.Profile

	p.Email = emailRe.FindString(text)
	if m := linkedinRe.FindStringSubmatch(text); m != nil {
		p.LinkedIn = m[1]
	}
	if m := githubRe.FindStringSubmatch(text); m != nil {
		p.GitHub = m[1]
	}
	p.Phone = findPhone(text)
	p.Name = findName(text)
	return p
}

// ImportFile reads the PDF at path and returns the extracted profile.
func ImportFile(path string) (profile.Profile, error) {
	text, err := ExtractText(path)
	if err != nil {
		return profile.Profile{}, err
	}
	return Parse(text), nil
}

// findPhone returns the first run of digits that looks like a phone number,
// normalised to single spaces. Date ranges such as "2019 - 2021" are skipped.
func findPhone(text string) string {
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < 9 || digits > 15 {
			continue
		}
		return strings.Join(strings.Fields(m), " ")
	}
	return ""
}

func findName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxNameLen || strings.ContainsAny(line, "@/:") || phoneRe.MatchString(line) {
			return leadingName(line)
		}
		return strings.Join(strings.Fields(line), " ")
	}
	return ""
}

// leadingName handles extracted text that runs the header together on one
// line, e.g. "Jane Doe jane@x.com +61 ...". The words before the first
// contact token are the name, provided there are at most maxNameWords.
func leadingName(line string) string {
	var words []string
	for _, w := range strings.Fields(line) {
		if isContactToken(w) {
			if len(words) == 0 || len(strings.Join(words, " ")) > maxNameLen {
				return ""
			}
			return strings.Join(words, " ")
		}
		if len(words) == maxNameWords {
			return ""
		}
		words = append(words, w)
	}
	return ""
}

func isContactToken(w string) bool {
	return strings.ContainsAny(w, "@/:|+0123456789")
}
