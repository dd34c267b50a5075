package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		scores         []int
		technicalCount int
		wantOverall    int
		wantTechnical  int
		wantBehavioral int
	}{
		{"canonical five question split", []int{8, 6, 7, 9, 5}, 4, 70, 75, 50},
		{"all perfect", []int{10, 10, 10, 10, 10}, 4, 100, 100, 100},
		{"all zero", []int{0, 0, 0, 0, 0}, 4, 0, 0, 0},
		{"rounding half up", []int{7, 8, 7, 8, 5}, 4, 70, 75, 50},
		{"technical count beyond length clamps", []int{5, 5}, 4, 50, 50, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			overall, technical, behavioral := Aggregate(tc.scores, tc.technicalCount)
			assert.Equal(t, tc.wantOverall, overall, "overall")
			assert.Equal(t, tc.wantTechnical, technical, "technical")
			assert.Equal(t, tc.wantBehavioral, behavioral, "behavioral")
		})
	}
}

func TestRecommendationFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Strongly recommended for hire", recommendationFor(80))
	assert.Equal(t, "Recommended for hire", recommendationFor(65))
	assert.Equal(t, "Consider with reservations", recommendationFor(50))
	assert.Equal(t, "Not recommended", recommendationFor(49))
}
