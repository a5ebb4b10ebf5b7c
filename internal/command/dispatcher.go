package command

import (
	"context"

	"kraken-console/internal/alerts"
	"kraken-console/internal/catalog"
	"kraken-console/internal/events"
	"kraken-console/internal/logger"
	"kraken-console/internal/portal"
)

// StatusUpdater is the slice of the alert backend client the dispatcher
// needs to push status changes for non-local alerts.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// Options wires a Dispatcher to its collaborators.
type Options struct {
	Portals *portal.Manager
	Store   *alerts.Store
	Backend StatusUpdater
	// BackendAlerts supplies the latest backend snapshot for alert
	// resolution by id or title.
	BackendAlerts func() []alerts.Alert
	Bus           *events.Bus
}

// Dispatcher translates one Action into portal-state mutations. All
// branches are side-effect-only; failures are logged and dropped, never
// surfaced to the caller.
type Dispatcher struct {
	portals       *portal.Manager
	store         *alerts.Store
	backend       StatusUpdater
	backendAlerts func() []alerts.Alert
	bus           *events.Bus
	log           *logger.LogEntry
}

func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		portals:       opts.Portals,
		store:         opts.Store,
		backend:       opts.Backend,
		backendAlerts: opts.BackendAlerts,
		bus:           opts.Bus,
		log:           logger.Named("dispatcher"),
	}
}

// Dispatch applies one action. The type switch is exhaustive over the
// closed Action set; adding an action kind without a branch here panics
// in tests rather than silently no-oping.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) {
	switch a := action.(type) {
	case OpenPortal:
		d.openPortal(a.PortalType, a.Level, a.Context)
	case ClosePortal:
		if a.PortalType == "all" {
			d.portals.CloseAll()
		} else {
			d.portals.Close(a.PortalType)
		}
	case ShowWeather:
		wctx := map[string]any{}
		if a.Location != "" {
			wctx["location"] = a.Location
		}
		d.openPortal("weather", a.Level, wctx)
	case AnalyzeThreats:
		d.store.SetFilters("", a.SeverityFilter, false)
		d.openPortal("alerts", 2, map[string]any{
			"severityFilter": a.SeverityFilter,
			"threatType":     a.ThreatType,
		})
	case NavigateMap:
		d.applyContext("map", a.Level, map[string]any{
			"action":    a.Action,
			"location":  a.Location,
			"zoomLevel": a.ZoomLevel,
		})
	case ExpandPortal:
		d.expandPortal(a.PortalType)
	case ControlInterface:
		// Only minimize_all is wired; the rest are forward-compatible
		// no-ops.
		if a.Action == "minimize_all" {
			d.portals.CloseAll()
		} else {
			d.log.WithField("action", a.Action).Info("interface control ignored")
		}
	case FilterAlerts:
		d.store.SetFilters(a.AlertType, a.Severity, a.ShowResolved)
		d.applyContext("alerts", 0, map[string]any{
			"action": "filter_alerts",
			"parameters": map[string]any{
				"type":     a.AlertType,
				"severity": a.Severity,
				"resolved": a.ShowResolved,
				"sortBy":   a.SortBy,
			},
		})
	case AcknowledgeAlert:
		d.mutateAlert(ctx, "acknowledge_alert", a.AlertID, a.AlertTitle, alerts.StatusAcknowledged)
	case ResolveAlert:
		d.mutateAlert(ctx, "resolve_alert", a.AlertID, a.AlertTitle, alerts.StatusResolved)
	case EscalateAlert:
		d.mutateAlert(ctx, "escalate_alert", a.AlertID, a.AlertTitle, alerts.StatusEscalated)
	case UpdatePortalContext:
		d.applyContext(a.PortalID, 0, a.Context)
	}
	if d.bus != nil {
		d.bus.Publish(events.CommandDispatched{Name: action.Name()})
	}
}

// openPortal resolves the id, routes level 3 to fullscreen and keeps
// grid opens deduplicated: an already-open portal with new context gets
// a context replacement (and remount) instead of a duplicate entry.
func (d *Dispatcher) openPortal(id string, level int, ctx map[string]any) {
	desc, ok := catalog.ByID(id)
	if !ok {
		d.log.WithField("portal", id).Warn("unknown portal id, open dropped")
		return
	}
	if len(ctx) == 0 {
		ctx = nil
	}
	if level == 3 {
		d.portals.OpenFullscreen(desc, ctx)
		return
	}
	if d.portals.InGrid(id) {
		if ctx != nil {
			d.portals.ReplaceContext(id, ctx)
		}
		return
	}
	d.portals.Open(desc, ctx)
}

func (d *Dispatcher) expandPortal(id string) {
	if d.portals.InGrid(id) {
		d.portals.ExpandToFullscreen(id)
		return
	}
	desc, ok := catalog.ByID(id)
	if !ok {
		d.log.WithField("portal", id).Warn("unknown portal id, expand dropped")
		return
	}
	d.portals.OpenFullscreen(desc, nil)
}

// applyContext merges context into an open portal, falling back to a
// fresh open carrying that context.
func (d *Dispatcher) applyContext(id string, level int, ctx map[string]any) {
	if d.portals.UpdateContext(id, ctx) {
		return
	}
	d.openPortal(id, level, ctx)
}

// mutateAlert resolves the target by exact id first, then by
// case-insensitive title substring over the combined backend+local
// list, first match wins. Local alerts mutate the store; backend ones
// go through the status endpoint. No match drops the action.
func (d *Dispatcher) mutateAlert(ctx context.Context, name, id, title, status string) {
	target, ok := d.resolveAlert(id, title)
	if !ok {
		d.log.WithFields(logger.Fields{"id": id, "title": title}).Warn("alert not found, action dropped")
		return
	}
	if !d.store.SetStatus(target.ID, status) && d.backend != nil {
		if err := d.backend.UpdateStatus(ctx, target.ID, status); err != nil {
			d.log.WithFields(logger.Fields{"alert": target.ID, "error": err.Error()}).Warn("backend status update failed")
		}
	}
	d.applyContext("alerts", 0, map[string]any{
		"action": name,
		"parameters": map[string]any{
			"alertId":    target.ID,
			"alertTitle": target.Title,
		},
	})
}

func (d *Dispatcher) resolveAlert(id, title string) (alerts.Alert, bool) {
	var backend []alerts.Alert
	if d.backendAlerts != nil {
		backend = d.backendAlerts()
	}
	combined := d.store.Combined(backend)
	if id != "" {
		for _, a := range combined {
			if a.ID == id {
				return a, true
			}
		}
	}
	if title != "" {
		return alerts.FindByTitle(combined, title)
	}
	return alerts.Alert{}, false
}
