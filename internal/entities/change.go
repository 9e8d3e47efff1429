package entities

// ChangeStatus buckets the direction and severity of a reading's change
// over a time window
type ChangeStatus string

const (
	ChangeStable         ChangeStatus = "stable"
	ChangeSmallIncrease  ChangeStatus = "small-increase"
	ChangeMediumIncrease ChangeStatus = "medium-increase"
	ChangeLargeIncrease  ChangeStatus = "large-increase"
	ChangeSmallDecrease  ChangeStatus = "small-decrease"
	ChangeMediumDecrease ChangeStatus = "medium-decrease"
	ChangeLargeDecrease  ChangeStatus = "large-decrease"
)

// Severity returns the magnitude rank of the status regardless of
// direction: 0 for stable up to 3 for large
func (c ChangeStatus) Severity() int {
	switch c {
	case ChangeSmallIncrease, ChangeSmallDecrease:
		return 1
	case ChangeMediumIncrease, ChangeMediumDecrease:
		return 2
	case ChangeLargeIncrease, ChangeLargeDecrease:
		return 3
	default:
		return 0
	}
}

// TimeRange is a requested change-evaluation window. Evenly sampled
// river sources support the 15-minute windows, daily sampled lake
// sources the day-granular ones.
type TimeRange string

const (
	Range1Hour   TimeRange = "1h"
	Range2Hours  TimeRange = "2h"
	Range6Hours  TimeRange = "6h"
	Range12Hours TimeRange = "12h"
	Range24Hours TimeRange = "24h"
	Range48Hours TimeRange = "48h"
	Range1Week   TimeRange = "1week"
	Range1Month  TimeRange = "1month"
	Range3Months TimeRange = "3months"
	Range6Months TimeRange = "6months"
)

// ChangeStats is the analyzer output for one window. AbsoluteChange is
// nil when the history is too short to say anything.
type ChangeStats struct {
	AbsoluteChange *float64     `json:"absoluteChange"`
	Status         ChangeStatus `json:"status"`
	Range          TimeRange    `json:"range"`
}

// DailyChange is the day-over-day change attached to RiverData
type DailyChange struct {
	Absolute float64      `json:"absolute"`
	Percent  float64      `json:"percent"`
	Status   ChangeStatus `json:"status"`
}
