package resume

import (
	"path/filepath"
	"testing"
)

const sampleResume = `
  Jane   Doe
Sydney, NSW | jane.doe@example.com | +61 412 345 678
linkedin.com/in/jane-doe | https://github.com/janedoe

Experience
Software Engineer, Acme 2019 - 2021
`

func TestParse_ExtractsContactDetails(t *testing.T) {
	p := Parse(sampleResume)

	if p.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", p.Name, "Jane Doe")
	}
	if p.Email != "jane.doe@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
	if p.Phone != "+61 412 345 678" {
		t.Errorf("Phone = %q", p.Phone)
	}
	if p.LinkedIn != "jane-doe" {
		t.Errorf("LinkedIn = %q", p.LinkedIn)
	}
	if p.GitHub != "janedoe" {
		t.Errorf("GitHub = %q", p.GitHub)
	}
	if p.Location != "" || p.VisaStatus != "" {
		t.Errorf("unexpected fields set: %+v", p)
	}
}

func TestParse_SkipsDateRanges(t *testing.T) {
	p := Parse("Engineer\n2019 - 2021\n")
	if p.Phone != "" {
		t.Errorf("Phone = %q, want empty", p.Phone)
	}
}

func TestParse_NameNotContactLine(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"email first", "jane@example.com\nJane Doe"},
		{"url first", "https://github.com/jane\nJane Doe"},
		{"phone first", "+61 412 345 678\nJane Doe"},
		{"paragraph first", "Experienced engineer with a decade of distributed systems work and a love of Go."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.text).Name; got != "" {
				t.Errorf("Name = %q, want empty", got)
			}
		})
	}
}

func TestParse_SingleLineHeader(t *testing.T) {
	text := "Jane Doe jane.doe@example.com +61 412 345 678 linkedin.com/in/jane-doe " +
		"Experience Software Engineer at Acme 2019 - 2021 Built payment services in Go"

	p := Parse(text)
	if p.Name != "Jane Doe" {
		t.Errorf("Name = %q, want Jane Doe", p.Name)
	}
	if p.Email != "jane.doe@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
	if p.Phone != "+61 412 345 678" {
		t.Errorf("Phone = %q", p.Phone)
	}
}

func TestParse_SingleLineTooManyLeadingWords(t *testing.T) {
	text := "Curriculum vitae of a senior engineer jane@example.com"
	if got := Parse(text).Name; got != "" {
		t.Errorf("Name = %q, want empty", got)
	}
}

func TestParse_Empty(t *testing.T) {
	p := Parse("")
	if p.Name != "" || p.Email != "" || p.Phone != "" {
		t.Errorf("Parse(\"\") = %+v", p)
	}
}

func TestImportFile_MissingFile(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
