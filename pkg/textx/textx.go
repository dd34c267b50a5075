// Package textx provides small text utilities used across the project.
package textx

import (
	"path/filepath"
	"strings"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLines collapses horizontal whitespace within each line but keeps
// the line structure intact. Section-aware parsing depends on newlines and
// blank-line separators surviving normalization.
func NormalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NameFromFilename derives a human name from a resume filename: the
// extension is stripped and underscore/hyphen separators become spaces.
// "Jane_Doe.pdf" -> "Jane Doe". Falls back to "Candidate" for empty input.
func NameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = CollapseWhitespace(base)
	if base == "" {
		return "Candidate"
	}
	return base
}

// TitleFirstTwo title-cases the first two whitespace-delimited tokens and
// returns them joined, or "" when fewer than two tokens exist.
func TitleFirstTwo(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return ""
	}
	return titleToken(tokens[0]) + " " + titleToken(tokens[1])
}

func titleToken(t string) string {
	if t == "" {
		return t
	}
	return strings.ToUpper(t[:1]) + t[1:]
}

// DigitsAndPlus strips every character except digits and '+'.
func DigitsAndPlus(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
