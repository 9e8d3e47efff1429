package analysis

import (
	"github.com/flusslauf/pegelmonitor/internal/entities"
)

// EvaluateAlertLevel classifies a flow reading against the configured
// threshold bands, checking red before yellow before green. A value
// matching no band, or absent thresholds, defaults to normal.
func EvaluateAlertLevel(flow float64, thresholds *entities.FlowThresholds) entities.AlertLevel {
	if thresholds == nil {
		return entities.AlertNormal
	}
	switch {
	case thresholds.Red.Contains(flow):
		return entities.AlertDanger
	case thresholds.Yellow.Contains(flow):
		return entities.AlertWarning
	case thresholds.Green.Contains(flow):
		return entities.AlertNormal
	}
	return entities.AlertNormal
}
