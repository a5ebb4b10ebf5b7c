package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"kraken-console/internal/agent"
	"kraken-console/internal/alerts"
	"kraken-console/internal/assistant"
	"kraken-console/internal/catalog"
	"kraken-console/internal/command"
	"kraken-console/internal/events"
	"kraken-console/internal/portal"
)

type scriptedClient struct {
	completion agent.Completion
}

func (s *scriptedClient) Complete(context.Context, agent.Prompt) (agent.Completion, error) {
	return s.completion, nil
}

type fixture struct {
	model   *Model
	portals *portal.Manager
	ctrl    *assistant.Controller
	store   *alerts.Store
	bus     *events.Bus
	client  *scriptedClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := assistant.NewController()
	portals := portal.NewManager(portal.Options{OnFullscreen: func(catalog.Descriptor) {
		ctrl.RequestAutoClose()
	}})
	store := alerts.NewStore()
	bus := events.NewBus()
	client := &scriptedClient{}
	interp := agent.NewInterpreter(client, "gpt-4")
	disp := command.NewDispatcher(command.Options{Portals: portals, Store: store, Bus: bus})

	m := New(Options{
		Portals:     portals,
		Assistant:   ctrl,
		Dispatcher:  disp,
		Interpreter: interp,
		Store:       store,
		Bus:         bus,
	})
	m.width = 120
	m.height = 36
	return &fixture{model: m, portals: portals, ctrl: ctrl, store: store, bus: bus, client: client}
}

func (f *fixture) key(t *testing.T, msg tea.KeyMsg) {
	t.Helper()
	updated, _ := f.model.Update(msg)
	f.model = updated.(*Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyF2() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyF2} }

func keyUp() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyUp} }

func keyDown() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyDown} }

func TestEnterSubmitsAndDispatchesCommand(t *testing.T) {
	f := newFixture(t)
	f.client.completion = agent.Completion{
		Call: &agent.FunctionCall{Name: "open_portal", Arguments: json.RawMessage(`{"portal_type":"map","level":2}`)},
	}

	f.key(t, tea.KeyMsg{Type: tea.KeyF2})
	if !f.ctrl.Visible() {
		t.Fatalf("f2 did not activate the assistant")
	}
	if f.portals.Mode() != portal.LayoutCorner {
		t.Fatalf("layout mode = %v, want corner", f.portals.Mode())
	}

	f.model.textarea.SetValue("show me the map")
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter produced no command")
	}
	if !f.model.pending {
		t.Fatalf("submit did not set pending")
	}

	msg := f.model.submitCommand("show me the map")()
	res, ok := msg.(commandResultMsg)
	if !ok {
		t.Fatalf("submit returned %T", msg)
	}
	updated, _ := f.model.Update(res)
	f.model = updated.(*Model)

	if f.model.pending {
		t.Fatalf("result did not clear pending")
	}
	if !f.portals.InGrid("map") {
		t.Fatalf("dispatched open_portal did not reach the grid")
	}
	msgs := f.ctrl.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != assistant.RoleKraken || !strings.Contains(last.Content, "Opening map portal") {
		t.Fatalf("last message = %+v", last)
	}
}

func TestEnterIgnoredWhilePending(t *testing.T) {
	f := newFixture(t)
	f.key(t, tea.KeyMsg{Type: tea.KeyF2})
	f.model.pending = true
	f.model.textarea.SetValue("second command")
	f.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if f.model.textarea.Value() != "second command" {
		t.Fatalf("pending submit consumed the composer")
	}
}

func TestAlertEventLocksAssistantAndOpensFullscreen(t *testing.T) {
	f := newFixture(t)
	f.client.completion = agent.Completion{Text: "Tracking the contact now."}

	evt := busEventMsg{Event: events.AlertRaised{Alert: alerts.Alert{
		ID: "threat-9", Type: alerts.TypeThreat, Severity: alerts.SeverityCritical,
		Title: "Inbound Track", Description: "Fast mover from the northeast.",
	}}}
	updated, cmd := f.model.Update(evt)
	f.model = updated.(*Model)

	if f.ctrl.State() != assistant.StateActiveLockedByAlert {
		t.Fatalf("assistant state = %v, want locked", f.ctrl.State())
	}
	fs, ok := f.portals.Fullscreen()
	if !ok || fs.ID != "alerts" {
		t.Fatalf("fullscreen = %+v %v, want alerts portal", fs, ok)
	}
	if fs.Context["alertId"] != "threat-9" {
		t.Fatalf("fullscreen context = %+v", fs.Context)
	}
	if cmd == nil {
		t.Fatalf("alert event produced no follow-up command")
	}

	msgs := f.ctrl.Messages()
	placeholder := msgs[len(msgs)-1]
	if !placeholder.Immediate || !strings.Contains(placeholder.Content, "Inbound Track") {
		t.Fatalf("placeholder = %+v", placeholder)
	}

	updated, _ = f.model.Update(alertReplyMsg{Result: agent.Result{OK: true, Message: "Tracking the contact now."}})
	f.model = updated.(*Model)
	msgs = f.ctrl.Messages()
	last := msgs[len(msgs)-1]
	if last.Immediate || last.Content != "Tracking the contact now." {
		t.Fatalf("reply did not replace placeholder: %+v", last)
	}
}

func TestEscapeReleasesAlertLockThenClosesPanel(t *testing.T) {
	f := newFixture(t)
	updated, _ := f.model.Update(busEventMsg{Event: events.AlertRaised{Alert: alerts.Alert{
		ID: "threat-9", Title: "Inbound Track", Severity: alerts.SeverityHigh,
	}}})
	f.model = updated.(*Model)

	f.key(t, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := f.portals.Fullscreen(); ok {
		t.Fatalf("esc did not close fullscreen")
	}
	if f.ctrl.State() != assistant.StateActive {
		t.Fatalf("esc did not release the alert lock: state = %v", f.ctrl.State())
	}

	f.key(t, tea.KeyMsg{Type: tea.KeyEsc})
	if f.ctrl.Visible() {
		t.Fatalf("second esc did not dismiss the panel")
	}
	if f.ctrl.State() != assistant.StateIdle {
		t.Fatalf("panel close with no portals should return to idle, got %v", f.ctrl.State())
	}
	if f.portals.Mode() != portal.LayoutIdle {
		t.Fatalf("layout mode = %v, want idle", f.portals.Mode())
	}
}

func TestAutoCloseSuppressedWhileLocked(t *testing.T) {
	f := newFixture(t)
	updated, _ := f.model.Update(busEventMsg{Event: events.AlertRaised{Alert: alerts.Alert{
		ID: "threat-9", Title: "Inbound Track",
	}}})
	f.model = updated.(*Model)

	// The fullscreen open fires the auto-close callback, but the lock
	// was set first so the panel stays visible.
	if !f.ctrl.Visible() {
		t.Fatalf("alert lock did not keep the panel visible")
	}
}

func TestSlashSearchTogglesBestMatch(t *testing.T) {
	f := newFixture(t)
	f.key(t, keyF2())

	f.model.textarea.SetValue("/weath")
	f.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if f.model.pending {
		t.Fatalf("search must not reach the interpreter")
	}
	if !f.portals.InGrid("weather") {
		t.Fatalf("search did not open the weather portal")
	}
	msgs := f.ctrl.Messages()
	if last := msgs[len(msgs)-1]; !strings.Contains(last.Content, "Opening Weather portal") {
		t.Fatalf("reply = %q", last.Content)
	}

	f.model.textarea.SetValue("/weather")
	f.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if f.portals.InGrid("weather") {
		t.Fatalf("second search did not toggle the portal closed")
	}
}

func TestSlashSearchNoMatch(t *testing.T) {
	f := newFixture(t)
	f.key(t, keyF2())
	f.model.textarea.SetValue("/zzzzzz")
	f.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	msgs := f.ctrl.Messages()
	if last := msgs[len(msgs)-1]; !strings.Contains(last.Content, "No portal matches") {
		t.Fatalf("reply = %q", last.Content)
	}
	if f.portals.HasOpenPortals() {
		t.Fatalf("no-match search opened a portal")
	}
}

func TestViewShowsSearchSuggestions(t *testing.T) {
	f := newFixture(t)
	f.key(t, keyF2())
	f.model.textarea.SetValue("/weath")
	out := f.model.View()
	if !strings.Contains(out, "Weather") {
		t.Fatalf("panel missing search suggestions:\n%s", out)
	}
}

func TestTrayDigitsTogglePortals(t *testing.T) {
	f := newFixture(t)
	f.model.tray = catalog.EdgeTop
	top := catalog.Tray(catalog.EdgeTop)

	f.key(t, keyRune('1'))
	if !f.portals.InGrid(top[0].ID) {
		t.Fatalf("digit did not open %q", top[0].ID)
	}
	f.key(t, keyRune('1'))
	if f.portals.InGrid(top[0].ID) {
		t.Fatalf("second digit did not toggle %q closed", top[0].ID)
	}
}

func TestMouseProximityRevealsTrays(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		x, y int
		want catalog.Edge
	}{
		{x: 50, y: 0, want: catalog.EdgeTop},
		{x: 0, y: 10, want: catalog.EdgeLeft},
		{x: 119, y: 10, want: catalog.EdgeRight},
		{x: 50, y: 10, want: catalog.Edge("")},
	}
	for _, tc := range cases {
		updated, _ := f.model.Update(tea.MouseMsg{X: tc.x, Y: tc.y, Action: tea.MouseActionMotion})
		f.model = updated.(*Model)
		if f.model.tray != tc.want {
			t.Fatalf("mouse at (%d,%d): tray = %q, want %q", tc.x, tc.y, f.model.tray, tc.want)
		}
	}
}

func TestAlertSelectionBounds(t *testing.T) {
	f := newFixture(t)
	d, _ := catalog.ByID("alerts")
	f.portals.OpenFullscreen(d, nil)

	n := len(f.model.visibleAlerts())
	if n == 0 {
		t.Fatalf("seeded store produced no visible alerts")
	}
	for i := 0; i < n+3; i++ {
		f.key(t, tea.KeyMsg{Type: tea.KeyDown})
	}
	if f.model.alertSel != n-1 {
		t.Fatalf("selection = %d, want clamp at %d", f.model.alertSel, n-1)
	}
	for i := 0; i < n+3; i++ {
		f.key(t, tea.KeyMsg{Type: tea.KeyUp})
	}
	if f.model.alertSel != 0 {
		t.Fatalf("selection = %d, want clamp at 0", f.model.alertSel)
	}
}

func TestViewIdleAffordance(t *testing.T) {
	f := newFixture(t)
	out := f.model.View()
	if !strings.Contains(out, "K R A K E N") {
		t.Fatalf("idle view missing affordance:\n%s", out)
	}
	if !strings.Contains(out, assistant.Greeting) {
		t.Fatalf("idle view missing greeting")
	}
}

func TestViewGridShowsOpenPortals(t *testing.T) {
	f := newFixture(t)
	f.key(t, tea.KeyMsg{Type: tea.KeyF2})
	d, _ := catalog.ByID("weather")
	f.portals.Open(d, map[string]any{"location": "sector 7"})

	out := f.model.View()
	if !strings.Contains(out, "Weather") {
		t.Fatalf("grid view missing portal title:\n%s", out)
	}
	if !strings.Contains(out, "KRAKEN") {
		t.Fatalf("grid view missing corner panel")
	}
}

func TestViewFullscreenAlertList(t *testing.T) {
	f := newFixture(t)
	d, _ := catalog.ByID("alerts")
	f.portals.OpenFullscreen(d, nil)

	out := f.model.View()
	if !strings.Contains(out, "Hostile UAS Detected") {
		t.Fatalf("fullscreen alert list missing seeded alert:\n%s", out)
	}
}

func TestQuitKeys(t *testing.T) {
	f := newFixture(t)
	_, cmd := f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q with panel hidden should quit")
	}

	f.key(t, tea.KeyMsg{Type: tea.KeyF2})
	f.model.textarea.SetValue("")
	updated, _ := f.model.Update(keyRune('q'))
	f.model = updated.(*Model)
	if !strings.Contains(f.model.textarea.Value(), "q") {
		t.Fatalf("q with panel visible should type into the composer")
	}
}
