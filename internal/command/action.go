package command

import (
	"encoding/json"
	"fmt"
)

// Action is the closed set of structured commands the interpreter (or
// the alert flow) can produce. The sealed marker keeps the dispatcher's
// type switch exhaustive: a new action kind fails to dispatch until it
// is handled there.
type Action interface {
	Name() string
	isAction()
}

// OpenPortal opens a portal at level 2 (grid) or level 3 (fullscreen).
type OpenPortal struct {
	PortalType string         `json:"portal_type"`
	Level      int            `json:"level,omitempty"`
	Context    map[string]any `json:"-"`
}

// ClosePortal closes one portal, or all of them for PortalType "all".
type ClosePortal struct {
	PortalType string `json:"portal_type"`
}

// ShowWeather is sugar for opening the weather portal with a location.
type ShowWeather struct {
	Location string `json:"location,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// AnalyzeThreats is sugar for opening the alerts portal with filters.
type AnalyzeThreats struct {
	SeverityFilter string `json:"severity_filter,omitempty"`
	ThreatType     string `json:"threat_type,omitempty"`
}

// NavigateMap steers the map portal, opening it if needed.
type NavigateMap struct {
	Action    string `json:"action"`
	Location  string `json:"location,omitempty"`
	ZoomLevel int    `json:"zoom_level,omitempty"`
	Level     int    `json:"level,omitempty"`
}

// ExpandPortal promotes a portal to fullscreen.
type ExpandPortal struct {
	PortalType string `json:"portal_type"`
}

// ControlInterface carries interface-wide controls. Only minimize_all
// mutates state; the other sub-actions are accepted no-ops.
type ControlInterface struct {
	Action  string `json:"action"`
	Setting string `json:"setting,omitempty"`
}

// FilterAlerts adjusts the alerts portal display filters.
type FilterAlerts struct {
	AlertType    string `json:"alert_type,omitempty"`
	Severity     string `json:"severity,omitempty"`
	ShowResolved bool   `json:"show_resolved,omitempty"`
	SortBy       string `json:"sort_by,omitempty"`
}

// AcknowledgeAlert, ResolveAlert and EscalateAlert mutate one alert's
// status, addressed by exact id or case-insensitive title substring.
type AcknowledgeAlert struct {
	AlertID    string `json:"alert_id,omitempty"`
	AlertTitle string `json:"alert_title,omitempty"`
}

type ResolveAlert struct {
	AlertID    string `json:"alert_id,omitempty"`
	AlertTitle string `json:"alert_title,omitempty"`
}

type EscalateAlert struct {
	AlertID    string `json:"alert_id,omitempty"`
	AlertTitle string `json:"alert_title,omitempty"`
}

// UpdatePortalContext is the internal fallback action: merge context
// into an open portal, or open it fresh with that context.
type UpdatePortalContext struct {
	PortalID string
	Context  map[string]any
}

func (OpenPortal) Name() string          { return "open_portal" }
func (ClosePortal) Name() string         { return "close_portal" }
func (ShowWeather) Name() string         { return "show_weather" }
func (AnalyzeThreats) Name() string      { return "analyze_threats" }
func (NavigateMap) Name() string         { return "navigate_map" }
func (ExpandPortal) Name() string        { return "expand_portal" }
func (ControlInterface) Name() string    { return "control_interface" }
func (FilterAlerts) Name() string        { return "filter_alerts" }
func (AcknowledgeAlert) Name() string    { return "acknowledge_alert" }
func (ResolveAlert) Name() string        { return "resolve_alert" }
func (EscalateAlert) Name() string       { return "escalate_alert" }
func (UpdatePortalContext) Name() string { return "update_portal_context" }

func (OpenPortal) isAction()          {}
func (ClosePortal) isAction()         {}
func (ShowWeather) isAction()         {}
func (AnalyzeThreats) isAction()      {}
func (NavigateMap) isAction()         {}
func (ExpandPortal) isAction()        {}
func (ControlInterface) isAction()    {}
func (FilterAlerts) isAction()        {}
func (AcknowledgeAlert) isAction()    {}
func (ResolveAlert) isAction()        {}
func (EscalateAlert) isAction()       {}
func (UpdatePortalContext) isAction() {}

// Parse turns the interpreter's wire form {name, arguments-JSON} into a
// typed Action. Unknown names are rejected here, not at dispatch time.
func Parse(name string, arguments []byte) (Action, error) {
	if len(arguments) == 0 {
		arguments = []byte("{}")
	}
	var target Action
	switch name {
	case "open_portal":
		target = &OpenPortal{}
	case "close_portal":
		target = &ClosePortal{}
	case "show_weather":
		target = &ShowWeather{}
	case "analyze_threats":
		target = &AnalyzeThreats{}
	case "navigate_map":
		target = &NavigateMap{}
	case "expand_portal":
		target = &ExpandPortal{}
	case "control_interface":
		target = &ControlInterface{}
	case "filter_alerts":
		target = &FilterAlerts{}
	case "acknowledge_alert":
		target = &AcknowledgeAlert{}
	case "resolve_alert":
		target = &ResolveAlert{}
	case "escalate_alert":
		target = &EscalateAlert{}
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
	if err := json.Unmarshal(arguments, target); err != nil {
		return nil, fmt.Errorf("decode %s arguments: %w", name, err)
	}
	return deref(target), nil
}

func deref(a Action) Action {
	switch v := a.(type) {
	case *OpenPortal:
		return *v
	case *ClosePortal:
		return *v
	case *ShowWeather:
		return *v
	case *AnalyzeThreats:
		return *v
	case *NavigateMap:
		return *v
	case *ExpandPortal:
		return *v
	case *ControlInterface:
		return *v
	case *FilterAlerts:
		return *v
	case *AcknowledgeAlert:
		return *v
	case *ResolveAlert:
		return *v
	case *EscalateAlert:
		return *v
	default:
		return a
	}
}
