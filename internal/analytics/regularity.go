package analytics

import (
	"fmt"
	"sort"

	"github.com/rewired-gh/pooptracker/internal/history"
)

// Pattern classifies the spacing of consecutive events.
type Pattern int

const (
	// PatternInsufficient means fewer than two events were recorded.
	PatternInsufficient Pattern = iota
	// PatternRegular means every gap lies within the healthy range.
	PatternRegular
	// PatternIrregular means at least one gap falls outside the healthy range.
	PatternIrregular
)

func (p Pattern) String() string {
	switch p {
	case PatternRegular:
		return "regular"
	case PatternIrregular:
		return "irregular"
	default:
		return "insufficient data"
	}
}

// RegularitySummary describes the gaps between consecutive events.
// Average, Min and Max are in hours and are zero when Pattern is
// PatternInsufficient.
type RegularitySummary struct {
	Pattern Pattern
	Average float64
	Min     float64
	Max     float64
	Gaps    int
}

// String renders the summary the way the display shows it, e.g.
// "regular (avg 1d, min 23h, max 1d 1h)".
func (r RegularitySummary) String() string {
	if r.Pattern == PatternInsufficient {
		return r.Pattern.String()
	}
	return fmt.Sprintf("%s (avg %s, min %s, max %s)",
		r.Pattern, FormatHours(r.Average), FormatHours(r.Min), FormatHours(r.Max))
}

// Regularity measures the gaps between consecutive events in hours and
// classifies the pattern. At least two events are required.
func Regularity(h history.History) RegularitySummary {
	if len(h) < 2 {
		return RegularitySummary{Pattern: PatternInsufficient}
	}

	ascending := make([]int64, len(h))
	for i, event := range h {
		ascending[i] = event.Timestamp
	}
	sort.Slice(ascending, func(i, j int) bool { return ascending[i] < ascending[j] })

	gaps := make([]float64, 0, len(ascending)-1)
	for i := 0; i+1 < len(ascending); i++ {
		gaps = append(gaps, hoursBetween(ascending[i], ascending[i+1]))
	}
	return summarizeGaps(gaps)
}

func summarizeGaps(gaps []float64) RegularitySummary {
	if len(gaps) == 0 {
		return RegularitySummary{Pattern: PatternInsufficient}
	}

	sum := 0.0
	minGap, maxGap := gaps[0], gaps[0]
	healthy := true
	for _, gap := range gaps {
		sum += gap
		if gap < minGap {
			minGap = gap
		}
		if gap > maxGap {
			maxGap = gap
		}
		if gap < HealthyIntervalMinHours || gap > HealthyIntervalMaxHours {
			healthy = false
		}
	}

	pattern := PatternIrregular
	if healthy {
		pattern = PatternRegular
	}

	return RegularitySummary{
		Pattern: pattern,
		Average: sum / float64(len(gaps)),
		Min:     minGap,
		Max:     maxGap,
		Gaps:    len(gaps),
	}
}
