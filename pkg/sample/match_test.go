package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	measured := Triplet{Red: 100, Green: 150, Blue: 200}

	refs := make([]Reference, 16)
	refs[0] = Reference{Valid: true, Color: measured}
	refs[3] = Reference{Valid: true, Color: Triplet{Red: 103, Green: 154, Blue: 200}} // distance 5
	refs[7] = Reference{Valid: true, Color: Triplet{Red: 10, Green: 10, Blue: 10}}
	refs[9] = Reference{Valid: false, Color: measured} // invalid slot with identical color

	tests := []struct {
		name      string
		threshold float32
		want      []int
	}{
		{name: "zero threshold never matches", threshold: 0, want: nil},
		{name: "identical only", threshold: 1, want: []int{0}},
		{name: "distance must be strictly less", threshold: 5, want: []int{0}},
		{name: "multiple matches", threshold: 6, want: []int{0, 3}},
		{name: "everything valid", threshold: 255, want: []int{0, 3, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(measured, refs, tt.threshold))
		})
	}
}

func TestMatch_InvalidSlotNeverReported(t *testing.T) {
	refs := []Reference{{Valid: false, Color: Triplet{Red: 1, Green: 2, Blue: 3}}}
	assert.Empty(t, Match(Triplet{Red: 1, Green: 2, Blue: 3}, refs, 1000))
}
