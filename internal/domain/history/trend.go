package history

import (
	"strconv"
	"strings"
	"time"
)

// Trend enum
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// stableThresholdPct: changes smaller than this are reported as stable
const stableThresholdPct = 5.0

// Observation is one historical reading of a named test. Value is free
// text as stored; numeric comparison must tolerate unparsable values.
type Observation struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	TakenAt time.Time `json:"taken_at"`
}

// NumericValue extracts a float from a free-text test value
// ("13.5 g/dL" -> 13.5). Returns false when nothing numeric remains.
func NumericValue(v string) (float64, bool) {
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Compute buckets the percentage change between the first and last
// numeric observation of a series. Fewer than two numeric points, or a
// zero baseline, reads as stable.
func Compute(series []Observation) Trend {
	var vals []float64
	for _, o := range series {
		if f, ok := NumericValue(o.Value); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) < 2 {
		return TrendStable
	}
	first, last := vals[0], vals[len(vals)-1]
	if first == 0 {
		return TrendStable
	}
	change := (last - first) / first * 100
	if change < stableThresholdPct && change > -stableThresholdPct {
		return TrendStable
	}
	if change > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}
