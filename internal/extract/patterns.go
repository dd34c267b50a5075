package extract

import (
	"regexp"
	"strings"

	"github.com/firstroundai/interviewd/pkg/textx"
)

// Shared per-field patterns used by the NLP and regex strategies and by the
// contact refiner.
var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Loose phone candidates; validity is decided after stripping separators.
	phoneCandidateRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)

	// Skills block: everything after a skills heading up to a blank line or
	// the next section heading.
	skillsSectionRe = regexp.MustCompile(`(?is)(?:technical\s+skills|skills)\s*[:\n](.+?)(?:\n\s*\n|\n[A-Z][A-Za-z ]{2,30}:|\z)`)

	designationRe = regexp.MustCompile(`(?i)\b(senior software engineer|staff software engineer|principal engineer|software engineer|full[\s-]?stack developer|frontend developer|backend developer|web developer|mobile developer|data scientist|data engineer|machine learning engineer|devops engineer|site reliability engineer|qa engineer|product manager|project manager|engineering manager|tech lead|solutions architect|software architect|software developer|developer|engineer)\b`)

	// Company names near employment phrases, anchored by a corporate suffix.
	// The suffix must be a standalone word so a name like "Initech Solutions"
	// is captured whole instead of cut at the "Tech" embedded in "Initech".
	companyRe = regexp.MustCompile(`(?i)(?:\bat\b|\bwith\b|worked at)\s+((?:[A-Z][A-Za-z0-9&.\-]*\s+){0,4}?(?:Inc|LLC|Ltd|Corp|Company|Technologies|Tech|Solutions|Systems))\b`)
)

func findEmails(text string) []string {
	return emailRe.FindAllString(text, -1)
}

// findPhone scans loose phone candidates top to bottom and returns the first
// one that is 10-15 digits after stripping separators and is not an
// obviously fake number.
func findPhone(text string) string {
	for _, cand := range phoneCandidateRe.FindAllString(text, -1) {
		p := textx.DigitsAndPlus(cand)
		digits := strings.TrimPrefix(p, "+")
		if len(digits) < 10 || len(digits) > 15 {
			continue
		}
		if isFakePhone(digits) {
			continue
		}
		return p
	}
	return ""
}

func isFakePhone(digits string) bool {
	return strings.Contains(digits, "555") ||
		strings.Contains(digits, "123456") ||
		strings.Contains(digits, "000000")
}

// findSkills extracts a comma/newline-separated skills block, capped at 10.
func findSkills(text string) []string {
	m := skillsSectionRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	raw := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == ',' || r == '\n' || r == ';' || r == '|' || r == '•'
	})
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(strings.Trim(s, "-· "))
		if s == "" || len(s) > 40 {
			continue
		}
		out = append(out, s)
		if len(out) == 10 {
			break
		}
	}
	return out
}

func findDesignation(text string) string {
	return designationRe.FindString(text)
}

// findCompanies returns company names mentioned near employment phrases,
// deduplicated and capped at 5.
func findCompanies(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range companyRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
		if len(out) == 5 {
			break
		}
	}
	return out
}
