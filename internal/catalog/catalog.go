package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Category groups portals into the edge trays they are launched from.
type Category string

const (
	CategorySystem      Category = "system"
	CategorySpecialized Category = "specialized"
	CategoryAIEngine    Category = "ai-engine"
)

// Edge names a screen border tray.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeBottom Edge = "bottom"
)

// Descriptor is one immutable portal definition.
type Descriptor struct {
	ID          string
	Type        string
	Title       string
	Category    Category
	Description string
}

var portals = []Descriptor{
	{ID: "system", Type: "system", Title: "System Status", Category: CategorySystem, Description: "CPU, memory, storage, network metrics"},
	{ID: "weather", Type: "weather", Title: "Weather", Category: CategorySystem, Description: "Current conditions, forecasts, NOAA data"},
	{ID: "calendar", Type: "calendar", Title: "Calendar", Category: CategorySystem, Description: "Schedule, events, mission timeline"},
	{ID: "network-diagram", Type: "network-diagram", Title: "Network Diagram", Category: CategorySystem, Description: "Network topology and traffic flow"},
	{ID: "data-links", Type: "data-links", Title: "Data Links", Category: CategorySystem, Description: "NIPR, SIPR, Link 16, TektoNet status"},
	{ID: "cyber-attack-surface", Type: "cyber-attack-surface", Title: "Cyber Attack Surface", Category: CategorySystem, Description: "Threat dashboard, vulnerabilities"},
	{ID: "power", Type: "power", Title: "Power Management", Category: CategorySystem, Description: "Grid status, consumption, UPS monitoring"},
	{ID: "media", Type: "media", Title: "Media Center", Category: CategorySystem, Description: "Audio/video feeds and recordings"},
	{ID: "documents", Type: "documents", Title: "Documents", Category: CategorySystem, Description: "Mission documents and files"},

	{ID: "map", Type: "map", Title: "Map", Category: CategorySpecialized, Description: "Geospatial situational awareness"},
	{ID: "timeline", Type: "timeline", Title: "Timeline", Category: CategorySpecialized, Description: "Mission events chronologically"},
	{ID: "messenger", Type: "messenger", Title: "Messenger", Category: CategorySpecialized, Description: "Secure communication hub"},
	{ID: "alerts", Type: "alerts", Title: "Alerts", Category: CategorySpecialized, Description: "Prioritized notifications"},
	{ID: "camera-capability", Type: "camera-capability", Title: "Camera Capability", Category: CategorySpecialized, Description: "Visual feeds for threat confirmation"},
	{ID: "data-view", Type: "data-view", Title: "Data View", Category: CategorySpecialized, Description: "Analytics and data visualization"},

	{ID: "confidence-scoring", Type: "confidence-scoring", Title: "Confidence Scoring Engine", Category: CategoryAIEngine, Description: "Reliability assessment of detections"},
	{ID: "prioritization", Type: "prioritization", Title: "Prioritization Engine", Category: CategoryAIEngine, Description: "Task and threat prioritization"},
	{ID: "coa-generator", Type: "coa-generator", Title: "COA Generator", Category: CategoryAIEngine, Description: "Course of action generation"},
	{ID: "asset-tasking", Type: "asset-tasking", Title: "Asset Tasking Optimizer", Category: CategoryAIEngine, Description: "Resource allocation optimization"},
	{ID: "human-teaming", Type: "human-teaming", Title: "Human-Machine Teaming", Category: CategoryAIEngine, Description: "Collaboration and trust metrics"},
	{ID: "context-correlator", Type: "context-correlator", Title: "Context Correlator", Category: CategoryAIEngine, Description: "Multi-domain analysis and correlation"},
}

var byID = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(portals))
	for _, d := range portals {
		m[d.ID] = d
	}
	return m
}()

// All returns the full catalog in tray order. Callers must not mutate it.
func All() []Descriptor {
	out := make([]Descriptor, len(portals))
	copy(out, portals)
	return out
}

// ByID is an exact-id lookup.
func ByID(id string) (Descriptor, bool) {
	d, ok := byID[id]
	return d, ok
}

// ByCategory returns the catalog subset for one tray category, in order.
func ByCategory(cat Category) []Descriptor {
	var out []Descriptor
	for _, d := range portals {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Tray maps a screen edge to its portal group. The bottom tray is
// reserved and empty.
func Tray(edge Edge) []Descriptor {
	switch edge {
	case EdgeTop:
		return ByCategory(CategorySystem)
	case EdgeLeft:
		return ByCategory(CategorySpecialized)
	case EdgeRight:
		return ByCategory(CategoryAIEngine)
	default:
		return nil
	}
}

// Match runs a fuzzy query over portal ids and titles, deduplicated per
// portal, best score first.
func Match(query string) []Descriptor {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return nil
	}
	keys := make([]string, 0, len(portals)*2)
	index := make([]int, 0, len(portals)*2)
	for i, d := range portals {
		keys = append(keys, strings.ToLower(d.ID))
		index = append(index, i)
		keys = append(keys, strings.ToLower(d.Title))
		index = append(index, i)
	}
	results := fuzzy.Find(trimmed, keys)
	seen := map[int]bool{}
	out := make([]Descriptor, 0, len(results))
	for _, res := range results {
		idx := index[res.Index]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, portals[idx])
	}
	return out
}
