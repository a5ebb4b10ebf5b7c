package alerts

import "time"

// Alert statuses as the backend stores them.
const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
	StatusEscalated    = "escalated"
)

// Alert types.
const (
	TypeThreat = "threat"
	TypeSystem = "system"
)

// Severities, highest first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert is one threat or system event, in the backend's wire shape.
type Alert struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Severity        string         `json:"severity"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Source          string         `json:"source"`
	Location        string         `json:"location"`
	Timestamp       time.Time      `json:"timestamp"`
	Status          string         `json:"status"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	ThreatLevel     string         `json:"threatLevel,omitempty"`
	AffectedSystems []string       `json:"affectedSystems,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// Snapshot is the /scenarios response: the filtered list plus the
// unfiltered total used for new-alert detection.
type Snapshot struct {
	Alerts     []Alert `json:"alerts"`
	TotalCount int     `json:"total_count"`
}

// Newest returns the alert with the maximum timestamp, or false for an
// empty list.
func Newest(list []Alert) (Alert, bool) {
	if len(list) == 0 {
		return Alert{}, false
	}
	best := list[0]
	for _, a := range list[1:] {
		if a.Timestamp.After(best.Timestamp) {
			best = a
		}
	}
	return best, true
}
