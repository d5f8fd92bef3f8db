package sample

// Reference is a stored reference color slot.
// An invalid slot carries no meaningful color and never matches.
type Reference struct {
	Valid bool    `yaml:"valid"`
	Color Triplet `yaml:"color"`
}

// Match returns the indexes of all valid references whose distance from t is
// strictly less than threshold, in slot order.
func Match(t Triplet, refs []Reference, threshold float32) []int {
	var matches []int
	for i, ref := range refs {
		if !ref.Valid {
			continue
		}
		if Distance(t, ref.Color) < threshold {
			matches = append(matches, i)
		}
	}
	return matches
}
