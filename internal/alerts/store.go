package alerts

import (
	"strings"
	"sync"
	"time"
)

// Store holds the locally seeded alerts plus their status mutations.
// It is constructed once at startup and injected; there is no ambient
// package-level state.
type Store struct {
	mu     sync.Mutex
	alerts []Alert

	// Display filters for the alerts portal.
	typeFilter     string
	severityFilter string
	showResolved   bool
}

// NewStore seeds the store with the built-in threat and system alerts.
func NewStore() *Store {
	now := time.Now()
	return &Store{
		typeFilter:     "all",
		severityFilter: "all",
		alerts: []Alert{
			{
				ID:          "threat-001",
				Type:        TypeThreat,
				Severity:    SeverityHigh,
				Title:       "Hostile UAS Detected",
				Description: "Multiple small drones approaching from northeast sector",
				Location:    "Grid 345.127",
				Source:      "Sentinel Radar",
				Timestamp:   now.Add(-2 * time.Minute),
				Status:      StatusActive,
				ThreatLevel: "probable",
			},
			{
				ID:          "threat-002",
				Type:        TypeThreat,
				Severity:    SeverityCritical,
				Title:       "Incoming Ballistic Threat",
				Description: "Long-range ballistic missile detected on intercept course",
				Location:    "Grid 234.889",
				Source:      "TPY-2 Radar",
				Timestamp:   now.Add(-5 * time.Minute),
				Status:      StatusActive,
				ThreatLevel: "imminent",
			},
			{
				ID:          "threat-003",
				Type:        TypeThreat,
				Severity:    SeverityMedium,
				Title:       "Unknown Aircraft Contact",
				Description: "Unidentified aircraft in restricted airspace",
				Location:    "Zone Alpha-7",
				Source:      "Air Defense Radar",
				Timestamp:   now.Add(-10 * time.Minute),
				Status:      StatusAcknowledged,
				ThreatLevel: "possible",
			},
			{
				ID:              "sys-001",
				Type:            TypeSystem,
				Severity:        SeverityCritical,
				Title:           "Primary Radar Offline",
				Description:     "Sentinel radar system has lost power and is not responding",
				Source:          "Sentinel Radar Array",
				Timestamp:       now.Add(-15 * time.Minute),
				Status:          StatusActive,
				AffectedSystems: []string{"Threat Detection", "Air Picture"},
			},
			{
				ID:              "sys-002",
				Type:            TypeSystem,
				Severity:        SeverityHigh,
				Title:           "Link 16 Connection Degraded",
				Description:     "Intermittent connectivity issues with tactical data network",
				Source:          "Link 16 Terminal",
				Timestamp:       now.Add(-8 * time.Minute),
				Status:          StatusActive,
				AffectedSystems: []string{"Data Sharing", "Situational Awareness"},
			},
			{
				ID:              "sys-003",
				Type:            TypeSystem,
				Severity:        SeverityMedium,
				Title:           "Low Interceptor Count",
				Description:     "Iron Dome battery has less than 25% interceptors remaining",
				Source:          "Iron Dome Battery Alpha",
				Timestamp:       now.Add(-20 * time.Minute),
				Status:          StatusAcknowledged,
				AffectedSystems: []string{"Air Defense Capability"},
			},
		},
	}
}

// All returns a snapshot of the local alerts.
func (s *Store) All() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// SetStatus updates the status of the alert with the given id. Returns
// false when the id is not local.
func (s *Store) SetStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = status
			return true
		}
	}
	return false
}

// Acknowledge, Resolve and Escalate are the three status mutations the
// alerts portal exposes.
func (s *Store) Acknowledge(id string) bool { return s.SetStatus(id, StatusAcknowledged) }
func (s *Store) Resolve(id string) bool     { return s.SetStatus(id, StatusResolved) }
func (s *Store) Escalate(id string) bool    { return s.SetStatus(id, StatusEscalated) }

// SetFilters updates the display filters for the alerts portal.
func (s *Store) SetFilters(typeFilter, severityFilter string, showResolved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if typeFilter != "" {
		s.typeFilter = typeFilter
	}
	if severityFilter != "" {
		s.severityFilter = severityFilter
	}
	s.showResolved = showResolved
}

// Filtered applies the current display filters to the local alerts.
func (s *Store) Filtered() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Alert
	for _, a := range s.alerts {
		if s.typeFilter != "all" && a.Type != s.typeFilter {
			continue
		}
		if s.severityFilter != "all" && a.Severity != s.severityFilter {
			continue
		}
		if !s.showResolved && a.Status == StatusResolved {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Combined returns backend alerts followed by local ones. By-title
// resolution walks this list in order, so backend alerts win ties.
func (s *Store) Combined(backend []Alert) []Alert {
	local := s.All()
	out := make([]Alert, 0, len(backend)+len(local))
	out = append(out, backend...)
	out = append(out, local...)
	return out
}

// FindByTitle returns the first alert whose title contains the query,
// case-insensitively, walking the combined list in order.
func FindByTitle(list []Alert, query string) (Alert, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Alert{}, false
	}
	for _, a := range list {
		if strings.Contains(strings.ToLower(a.Title), q) {
			return a, true
		}
	}
	return Alert{}, false
}
