// Package tokencount clamps prompt text to a token budget so resumes of
// arbitrary length fit provider context windows.
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encoding = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
)

func encoder() *tiktoken.Tiktoken {
	once.Do(func() {
		e, err := tiktoken.GetEncoding(encoding)
		if err == nil {
			enc = e
		}
	})
	return enc
}

// Count returns the token count of s, or a rune-based estimate when the
// encoder is unavailable.
func Count(s string) int {
	e := encoder()
	if e == nil {
		return len([]rune(s)) / 4
	}
	return len(e.Encode(s, nil, nil))
}

// Clamp truncates s to at most budget tokens. Text within budget is
// returned unchanged.
func Clamp(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	e := encoder()
	if e == nil {
		// Rough fallback: ~4 runes per token.
		r := []rune(s)
		if len(r) <= budget*4 {
			return s
		}
		return string(r[:budget*4])
	}
	toks := e.Encode(s, nil, nil)
	if len(toks) <= budget {
		return s
	}
	return e.Decode(toks[:budget])
}
