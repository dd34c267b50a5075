package usecase

import "math"

// Aggregate rolls per-answer scores (each 0-10) up to the 0-100 scale.
// The first technicalCount answers are scored as technical and the rest as
// behavioral; the split is positional, not content-based.
func Aggregate(scores []int, technicalCount int) (overall, technical, behavioral int) {
	if technicalCount > len(scores) {
		technicalCount = len(scores)
	}
	overall = roundMean(scores)
	technical = roundMean(scores[:technicalCount])
	behavioral = roundMean(scores[technicalCount:])
	return overall, technical, behavioral
}

// roundMean returns round(mean(scores) * 10), or 0 for an empty slice.
func roundMean(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores)) * 10))
}

// recommendationFor maps an overall score to the hiring recommendation used
// when the summarization provider is unavailable.
func recommendationFor(overall int) string {
	switch {
	case overall >= 80:
		return "Strongly recommended for hire"
	case overall >= 65:
		return "Recommended for hire"
	case overall >= 50:
		return "Consider with reservations"
	default:
		return "Not recommended"
	}
}
