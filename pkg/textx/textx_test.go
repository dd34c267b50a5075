package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLines(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses tabs and runs within a line", "a\t\tb   c", "a b c"},
		{"keeps blank lines between sections", "Skills: Go\n\nHobbies: Chess", "Skills: Go\n\nHobbies: Chess"},
		{"strips carriage returns", "a\r\nb\r\n", "a\nb"},
		{"trims surrounding whitespace", "\n\n  hello  \n", "hello"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeLines(tt.in))
		})
	}
}

func TestNameFromFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Jane Doe", NameFromFilename("Jane_Doe.pdf"))
	assert.Equal(t, "bob brown", NameFromFilename("bob-brown.docx"))
	assert.Equal(t, "Candidate", NameFromFilename(""))
}

func TestDigitsAndPlus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "+15551234567", DigitsAndPlus("+1 (555) 123-4567"))
}
