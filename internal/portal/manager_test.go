package portal

import (
	"testing"

	"kraken-console/internal/catalog"
)

func desc(t *testing.T, id string) catalog.Descriptor {
	t.Helper()
	d, ok := catalog.ByID(id)
	if !ok {
		t.Fatalf("catalog missing %q", id)
	}
	return d
}

func openN(t *testing.T, m *Manager, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, ok := m.Open(desc(t, id), nil); !ok {
			t.Fatalf("Open(%s) dropped unexpectedly", id)
		}
	}
}

func TestOpen_GridExclusivityAndCapacity(t *testing.T) {
	m := NewManager(Options{})
	ids := []string{"system", "weather", "calendar", "map", "timeline", "messenger", "alerts", "power", "media"}
	openN(t, m, ids...)

	seen := map[Position]string{}
	for _, p := range m.Grid() {
		if p.Position == nil {
			t.Fatalf("grid portal %q has no position", p.ID)
		}
		if prev, ok := seen[*p.Position]; ok {
			t.Fatalf("slot %+v shared by %q and %q", *p.Position, prev, p.ID)
		}
		seen[*p.Position] = p.ID
	}

	if _, ok := m.Open(desc(t, "documents"), nil); ok {
		t.Fatalf("tenth Open succeeded on a full grid")
	}
	if got := len(m.Grid()); got != 9 {
		t.Fatalf("grid size = %d after dropped open, want 9", got)
	}
}

func TestOpen_IdleModeIsRowMajor(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "system", "weather", "calendar", "map")

	want := []Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}}
	grid := m.Grid()
	for i, p := range grid {
		if *p.Position != want[i] {
			t.Fatalf("portal %d at %+v, want %+v", i, *p.Position, want[i])
		}
	}
}

func TestOpen_CornerModeAvoidsTopLeft(t *testing.T) {
	m := NewManager(Options{})
	m.SetLayoutMode(LayoutCorner)
	openN(t, m, "system", "weather", "calendar")

	want := []Position{{0, 1}, {0, 2}, {1, 1}}
	for i, p := range m.Grid() {
		if *p.Position != want[i] {
			t.Fatalf("portal %d at %+v, want %+v", i, *p.Position, want[i])
		}
	}
}

func TestSetLayoutMode_ReflowPreservesInsertionOrder(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "system", "weather", "calendar", "map")

	before := m.OpenIDs()
	m.SetLayoutMode(LayoutCorner)

	after := m.Grid()
	if len(after) != len(before) {
		t.Fatalf("reflow changed open set: %v -> %d entries", before, len(after))
	}
	wantPos := []Position{{0, 1}, {0, 2}, {1, 1}, {1, 2}}
	for i, p := range after {
		if p.ID != before[i] {
			t.Fatalf("reflow reordered portals: got %q at %d, want %q", p.ID, i, before[i])
		}
		if *p.Position != wantPos[i] {
			t.Fatalf("portal %q at %+v, want %+v", p.ID, *p.Position, wantPos[i])
		}
	}

	// Repeated toggles are deterministic and idempotent on the id set.
	m.SetLayoutMode(LayoutIdle)
	m.SetLayoutMode(LayoutCorner)
	again := m.Grid()
	for i, p := range again {
		if p.ID != before[i] || *p.Position != wantPos[i] {
			t.Fatalf("repeated toggle drifted: %q at %+v", p.ID, *p.Position)
		}
	}
}

func TestClose_IdempotentAndClearsFullscreen(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "weather")
	m.ExpandToFullscreen("weather")

	m.Close("weather")
	if m.HasOpenPortals() {
		t.Fatalf("portal still open after Close")
	}
	if _, ok := m.Fullscreen(); ok {
		t.Fatalf("fullscreen survived Close of the same id")
	}
	m.Close("weather") // no-op
	m.Close("never-opened")
}

func TestCloseAll_ClearsGridAndFullscreen(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "map", "weather")
	m.OpenFullscreen(desc(t, "alerts"), nil)

	m.CloseAll()
	if m.HasOpenPortals() {
		t.Fatalf("HasOpenPortals true after CloseAll")
	}
	if got := m.OpenIDs(); len(got) != 0 {
		t.Fatalf("OpenIDs = %v after CloseAll", got)
	}
}

func TestToggle_DoesNotAffectFullscreen(t *testing.T) {
	m := NewManager(Options{})
	m.OpenFullscreen(desc(t, "alerts"), nil)

	m.Toggle(desc(t, "alerts")) // opens in grid
	if !m.InGrid("alerts") {
		t.Fatalf("Toggle did not open the portal")
	}
	m.Toggle(desc(t, "alerts")) // closes grid entry
	if m.InGrid("alerts") {
		t.Fatalf("Toggle did not close the portal")
	}
	if _, ok := m.Fullscreen(); !ok {
		t.Fatalf("Toggle cleared the fullscreen slot")
	}
}

func TestExpandToFullscreen_GridEntryStays(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "weather")

	grid := m.Grid()
	if *grid[0].Position != (Position{0, 0}) {
		t.Fatalf("weather at %+v, want (0,0)", *grid[0].Position)
	}
	if !m.ExpandToFullscreen("weather") {
		t.Fatalf("ExpandToFullscreen(weather) = false")
	}
	fs, ok := m.Fullscreen()
	if !ok || fs.ID != "weather" {
		t.Fatalf("fullscreen = %+v, %v", fs, ok)
	}
	if !m.InGrid("weather") {
		t.Fatalf("grid entry removed by expand")
	}
	if m.ExpandToFullscreen("no-such-portal") {
		t.Fatalf("expand of unknown id succeeded")
	}
}

func TestExpandToFullscreen_FallsBackToCatalog(t *testing.T) {
	m := NewManager(Options{})
	if !m.ExpandToFullscreen("map") {
		t.Fatalf("ExpandToFullscreen(map) = false for a catalog id")
	}
	fs, ok := m.Fullscreen()
	if !ok || fs.ID != "map" {
		t.Fatalf("fullscreen = %+v, %v", fs, ok)
	}
	if m.InGrid("map") {
		t.Fatalf("catalog fallback should not add a grid entry")
	}
}

func TestOpenFullscreen_SignalsAssistant(t *testing.T) {
	var got []string
	m := NewManager(Options{OnFullscreen: func(d catalog.Descriptor) {
		got = append(got, d.ID)
	}})

	m.OpenFullscreen(desc(t, "alerts"), nil)
	openN(t, m, "weather")
	m.ExpandToFullscreen("weather")

	if len(got) != 2 || got[0] != "alerts" || got[1] != "weather" {
		t.Fatalf("fullscreen signals = %v", got)
	}
}

func TestUpdateContext(t *testing.T) {
	m := NewManager(Options{})
	ctx := map[string]any{"action": "navigate", "location": "grid north"}

	if m.UpdateContext("map", ctx) {
		t.Fatalf("UpdateContext on a closed portal returned true")
	}
	openN(t, m, "map")
	if !m.UpdateContext("map", ctx) {
		t.Fatalf("UpdateContext on an open portal returned false")
	}
	grid := m.Grid()
	if grid[0].Context["location"] != "grid north" {
		t.Fatalf("stored context = %+v", grid[0].Context)
	}

	// Merge keeps existing keys.
	if !m.UpdateContext("map", map[string]any{"zoom": 4}) {
		t.Fatalf("second UpdateContext returned false")
	}
	grid = m.Grid()
	if grid[0].Context["action"] != "navigate" || grid[0].Context["zoom"] != 4 {
		t.Fatalf("merged context = %+v", grid[0].Context)
	}
}

func TestReplaceContext_BumpsVersion(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "weather")
	if !m.UpdateContext("weather", map[string]any{"location": "old"}) {
		t.Fatalf("seed context failed")
	}

	if m.ReplaceContext("nope", nil) {
		t.Fatalf("ReplaceContext on a closed portal returned true")
	}
	if !m.ReplaceContext("weather", map[string]any{"location": "new"}) {
		t.Fatalf("ReplaceContext returned false")
	}
	grid := m.Grid()
	if grid[0].Version != 1 {
		t.Fatalf("Version = %d, want 1", grid[0].Version)
	}
	if _, ok := grid[0].Context["location"]; !ok {
		t.Fatalf("replacement context missing: %+v", grid[0].Context)
	}
	if len(grid[0].Context) != 1 || grid[0].Context["location"] != "new" {
		t.Fatalf("context not replaced wholesale: %+v", grid[0].Context)
	}
}

func TestReplaceContext_PromotedPortalBumpsOnce(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "weather")
	if !m.ExpandToFullscreen("weather") {
		t.Fatalf("ExpandToFullscreen failed")
	}

	if !m.ReplaceContext("weather", map[string]any{"location": "new"}) {
		t.Fatalf("ReplaceContext returned false")
	}
	grid := m.Grid()
	if grid[0].Version != 1 {
		t.Fatalf("grid Version = %d, want 1 per replacement", grid[0].Version)
	}
	fs, ok := m.Fullscreen()
	if !ok || fs.Version != 1 {
		t.Fatalf("fullscreen Version = %d (ok=%v), want 1", fs.Version, ok)
	}
	if fs.Context["location"] != "new" {
		t.Fatalf("fullscreen context = %+v", fs.Context)
	}

	// A fullscreen-only portal still gets its bump.
	m2 := NewManager(Options{})
	m2.OpenFullscreen(desc(t, "alerts"), nil)
	if !m2.ReplaceContext("alerts", map[string]any{"alertId": "a1"}) {
		t.Fatalf("ReplaceContext on fullscreen-only portal returned false")
	}
	fs2, _ := m2.Fullscreen()
	if fs2.Version != 1 {
		t.Fatalf("fullscreen-only Version = %d, want 1", fs2.Version)
	}
}

func TestOpenIDs_CoversFullscreenOnly(t *testing.T) {
	m := NewManager(Options{})
	openN(t, m, "map")
	m.OpenFullscreen(desc(t, "alerts"), nil)

	ids := m.OpenIDs()
	if len(ids) != 2 || ids[0] != "map" || ids[1] != "alerts" {
		t.Fatalf("OpenIDs = %v", ids)
	}

	m.ExpandToFullscreen("map")
	ids = m.OpenIDs()
	if len(ids) != 1 || ids[0] != "map" {
		t.Fatalf("OpenIDs with grid+fullscreen overlap = %v", ids)
	}
}
