package dose

// Range is the qualitative label for a raw dose.
type Range string

const (
	RangeMicrodose    Range = "microdose"
	RangeThreshold    Range = "threshold"
	RangeLight        Range = "light"
	RangeModerate     Range = "moderate"
	RangeStrong       Range = "strong"
	RangeHeavy        Range = "heavy"
	RangeBreakthrough Range = "breakthrough"
)

var rangeOrder = []struct {
	max   float64
	label Range
}{
	{10, RangeMicrodose},
	{50, RangeThreshold},
	{100, RangeLight},
	{150, RangeModerate},
	{250, RangeStrong},
	{400, RangeHeavy},
}

// Classify returns the range label for a raw dose. Upper bounds are inclusive.
func Classify(d float64) Range {
	for _, r := range rangeOrder {
		if d <= r.max {
			return r.label
		}
	}
	return RangeBreakthrough
}

// Rank orders ranges from 0 (microdose) to 6 (breakthrough); -1 if unknown.
func (r Range) Rank() int {
	for i, known := range rangeOrder {
		if known.label == r {
			return i
		}
	}
	if r == RangeBreakthrough {
		return len(rangeOrder)
	}
	return -1
}
