package delta

import (
	"github.com/itohio/gocolorimeter/pkg/sample"
)

const (
	// HistorySize is the number of magnitudes kept in the rolling history.
	HistorySize = 16
	// Alpha is the weight of the rolling mean in the blended average.
	Alpha = 0.9
)

// Detector tracks the magnitude of successive triplets and reports how far the
// latest one deviates from its long-term average.
//
// The history is a fixed ring of HistorySize magnitudes with a running sum.
// Empty slots count as zero, so the average ramps up over the first
// HistorySize updates.
//
// Detector is not safe for concurrent use; the engine serializes access.
type Detector struct {
	history   [HistorySize]float32
	sum       float64
	index     int
	magnitude float32
	average   float64
	deviation int
}

// New creates an empty Detector.
func New() *Detector {
	return &Detector{}
}

// Update feeds t into the history and returns the new deviation.
func (d *Detector) Update(t sample.Triplet) int {
	m := sample.Magnitude(t)

	d.sum -= float64(d.history[d.index])
	d.history[d.index] = m
	d.sum += float64(m)
	d.index = (d.index + 1) % HistorySize

	// Blended in float64; a steady whole magnitude must truncate to itself.
	d.magnitude = m
	d.average = Alpha*d.sum/HistorySize + (1-Alpha)*float64(m)

	// Both terms are truncated before subtracting.
	diff := int(m) - int(d.average)
	if diff < 0 {
		diff = -diff
	}
	d.deviation = diff

	return d.deviation
}

// Deviation returns the deviation computed by the last Update.
func (d *Detector) Deviation() int {
	return d.deviation
}

// Exceeds reports whether the last deviation is strictly above threshold.
func (d *Detector) Exceeds(threshold int) bool {
	return d.deviation > threshold
}

// Magnitude returns the magnitude of the last triplet.
func (d *Detector) Magnitude() float32 {
	return d.magnitude
}

// Average returns the blended average computed by the last Update.
func (d *Detector) Average() float32 {
	return float32(d.average)
}

// History returns a copy of the ring, oldest entry first.
func (d *Detector) History() []float32 {
	result := make([]float32, 0, HistorySize)
	for i := range HistorySize {
		result = append(result, d.history[(d.index+i)%HistorySize])
	}
	return result
}

// Reset clears the history.
func (d *Detector) Reset() {
	*d = Detector{}
}
