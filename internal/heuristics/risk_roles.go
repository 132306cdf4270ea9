package heuristics

import "github.com/cacsx/intel-engine/pkg/models"

// SeverityForRole maps the role an analyst gives a watched address to the
// alert level its hits carry.
func SeverityForRole(role string) models.Severity {
	switch role {
	case "theft", "sanctioned", "ransomware":
		return models.SeverityCritical
	case "exchange", "suspect", "mixer":
		return models.SeverityHigh
	case "service":
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
