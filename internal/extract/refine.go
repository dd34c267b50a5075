package extract

import (
	"strings"

	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/pkg/textx"
)

// Refine fills or corrects name/email/phone on a partially-filled profile
// using heuristics independent of whichever strategy produced it. It is pure
// and never discards a field it did not replace; designation, pastCompanies,
// and skillset pass through untouched.
func Refine(rawText, filename string, p domain.CandidateProfile) domain.CandidateProfile {
	if missing(p.Email) || isExcludedEmail(p.Email) {
		if e := firstValidEmail(rawText); e != "" {
			p.Email = e
		} else if isExcludedEmail(p.Email) {
			p.Email = ""
		}
	}
	if missing(p.Phone) {
		if ph := findPhone(rawText); ph != "" {
			p.Phone = ph
		}
	}
	if missing(p.Name) {
		if n := textx.TitleFirstTwo(textx.NameFromFilename(filename)); n != "" {
			p.Name = n
		}
	}
	return p
}

func missing(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == domain.NotSpecified
}

// isExcludedEmail reports whether an email belongs to a throwaway domain
// (example.com, test.com, or any dummy.* domain).
func isExcludedEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	dom := strings.ToLower(email[at+1:])
	if dom == "example.com" || dom == "test.com" {
		return true
	}
	return strings.HasPrefix(dom, "dummy.")
}

// firstValidEmail scans top to bottom and returns the first email not on a
// throwaway domain.
func firstValidEmail(text string) string {
	for _, e := range findEmails(text) {
		if !isExcludedEmail(e) {
			return e
		}
	}
	return ""
}
