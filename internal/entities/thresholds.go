package entities

// AlertLevel classifies a flow reading against configured threshold bands
type AlertLevel string

const (
	AlertNormal  AlertLevel = "normal"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "alert"
)

// Range is one inclusive numeric interval. A nil bound means unbounded
// on that side.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v falls inside the range, bounds inclusive
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Band is a union of disjoint inclusive ranges
type Band []Range

// Contains reports whether v falls inside any range of the band
func (b Band) Contains(v float64) bool {
	for _, r := range b {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

// FlowThresholds holds the configured discharge bands for one water body
type FlowThresholds struct {
	Green  Band `json:"green,omitempty"`
	Yellow Band `json:"yellow,omitempty"`
	Red    Band `json:"red,omitempty"`
}
