package analytics

import (
	"time"

	"github.com/rewired-gh/pooptracker/internal/history"
	"github.com/rewired-gh/pooptracker/internal/models"
)

// Summary is everything the display needs for one refresh.
type Summary struct {
	Total      int
	Last       *models.Event // nil when nothing has been recorded
	Elapsed    string        // relative time since Last, empty when Last is nil
	Regularity RegularitySummary
	Risk       RiskLevel
	Daily      []models.ChartBucket
	Weekly     []models.ChartBucket
}

// HasData reports whether at least one event was recorded.
func (s Summary) HasData() bool {
	return s.Last != nil
}

// Summarize runs every analytics pass over h. Risk is RiskNone for an
// empty history.
func Summarize(h history.History, now int64, zone *time.Location) Summary {
	s := Summary{
		Total:      len(h),
		Regularity: Regularity(h),
		Risk:       RiskNone,
		Daily:      BucketDaily(h, now, zone),
		Weekly:     BucketWeekly(h, now, zone),
	}

	if last, ok := h.Latest(); ok {
		s.Last = &last
		s.Elapsed = ElapsedSince(last.Timestamp, now)
		s.Risk = ConstipationRisk(last.Timestamp, now)
	}
	return s
}
