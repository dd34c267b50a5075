package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/firstroundai/interviewd/internal/domain"
)

func TestRefineNeverOverwritesPresentFields(t *testing.T) {
	t.Parallel()
	raw := "Contact: better@real.io, phone +14155552671"
	in := domain.CandidateProfile{
		Name:  "Existing Name",
		Email: "kept@corp.io",
		Phone: "+12025550000",
	}
	// Phone present -> kept even though raw text has another; email present
	// and not excluded -> kept.
	out := Refine(raw, "other_person.pdf", in)
	assert.Equal(t, "Existing Name", out.Name)
	assert.Equal(t, "kept@corp.io", out.Email)
	assert.Equal(t, "+12025550000", out.Phone)
}

func TestRefineReplacesExcludedEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		raw  string
		want string
	}{
		{"example.com replaced", "x@example.com", "reach me at real@corp.io", "real@corp.io"},
		{"test.com replaced", "x@test.com", "reach me at real@corp.io", "real@corp.io"},
		{"dummy domain replaced", "x@dummy.org", "reach me at real@corp.io", "real@corp.io"},
		{"excluded and no replacement clears", "x@example.com", "no emails here", ""},
		{"first valid match wins", "", "a@example.com b@first.io c@second.io", "b@first.io"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := Refine(tc.raw, "f.pdf", domain.CandidateProfile{Email: tc.in})
			assert.Equal(t, tc.want, out.Email)
		})
	}
}

func TestRefinePhoneRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"valid 11 digit", "call +1 (202) 331-9876 today", "+12023319876"},
		{"too short rejected", "call 123-4567", ""},
		{"fake 555 rejected", "call (415) 555-2671", ""},
		{"fake 123456 rejected", "call 9912345678", ""},
		{"fake 000000 rejected", "call 4000000123 45", ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := Refine(tc.raw, "f.pdf", domain.CandidateProfile{})
			assert.Equal(t, tc.want, out.Phone)
		})
	}
}

func TestRefineNameFromFilename(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filename string
		want     string
	}{
		{"jane_doe.pdf", "Jane Doe"},
		{"john-smith-resume.docx", "John Smith"},
		{"single.pdf", ""},
	}
	for _, tc := range tests {
		out := Refine("", tc.filename, domain.CandidateProfile{})
		assert.Equal(t, tc.want, out.Name, tc.filename)
	}
}

func TestRefineDoesNotTouchTrustedFields(t *testing.T) {
	t.Parallel()
	in := domain.CandidateProfile{
		Designation:   "Staff Engineer",
		PastCompanies: []string{"Acme Inc"},
		Skillset:      []string{"Go"},
	}
	out := Refine("Junior Developer at MegaCorp Inc. Skills: Rust", "f.pdf", in)
	assert.Equal(t, "Staff Engineer", out.Designation)
	assert.Equal(t, []string{"Acme Inc"}, out.PastCompanies)
	assert.Equal(t, []string{"Go"}, out.Skillset)
}
