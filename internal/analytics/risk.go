package analytics

// RiskLevel is the constipation-risk tier derived from time since the last event.
type RiskLevel int

const (
	// RiskNone means fewer than 48 hours have passed.
	RiskNone RiskLevel = iota
	// RiskPossible means at least 48 hours have passed.
	RiskPossible
	// RiskLikely means at least 72 hours have passed.
	RiskLikely
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLikely:
		return "likely constipated"
	case RiskPossible:
		return "possible constipation"
	default:
		return "no warning signs"
	}
}

// ConstipationRisk classifies the time between the last event and now.
func ConstipationRisk(lastEvent, now int64) RiskLevel {
	return RiskForHours(hoursBetween(lastEvent, now))
}

// RiskForHours applies the tier thresholds to an elapsed hour count.
// Thresholds are inclusive lower bounds and the highest tier wins.
func RiskForHours(hoursSince float64) RiskLevel {
	switch {
	case hoursSince >= LikelyConstipationHours:
		return RiskLikely
	case hoursSince >= PossibleConstipationHours:
		return RiskPossible
	default:
		return RiskNone
	}
}
