package portal

import (
	"sync"

	"kraken-console/internal/catalog"
	"kraken-console/internal/logger"
)

// LayoutMode selects the slot preference ordering for the 3x3 grid.
type LayoutMode int

const (
	// LayoutIdle fills the grid row-major.
	LayoutIdle LayoutMode = iota
	// LayoutCorner avoids the top-left cell, which the corner assistant
	// panel occludes.
	LayoutCorner
)

// Position is one of the nine grid slots.
type Position struct {
	Row int
	Col int
}

// Open is a catalog portal that is currently displayed. Position is nil
// for a fullscreen-only portal. Version bumps whenever the context is
// replaced wholesale, signalling the widget to remount.
type Open struct {
	catalog.Descriptor
	Position *Position
	Context  map[string]any
	Version  int
}

var (
	cornerOrder = []Position{
		{0, 1}, {0, 2}, {1, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}, {1, 0}, {0, 0},
	}
	rowMajorOrder = []Position{
		{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2},
	}
)

// Manager owns the open-portal set, slot assignment and the fullscreen
// slot. It is constructed once at startup and injected into its callers.
type Manager struct {
	mu           sync.Mutex
	mode         LayoutMode
	open         []*Open // insertion order
	fullscreen   *Open
	onFullscreen func(catalog.Descriptor)
	log          *logger.LogEntry
}

// Options configures a Manager.
type Options struct {
	// OnFullscreen fires whenever a portal takes the fullscreen slot,
	// letting the assistant panel controller deactivate itself.
	OnFullscreen func(catalog.Descriptor)
}

func NewManager(opts Options) *Manager {
	return &Manager{
		mode:         LayoutIdle,
		onFullscreen: opts.OnFullscreen,
		log:          logger.Named("portal"),
	}
}

func (m *Manager) ordering() []Position {
	if m.mode == LayoutCorner {
		return cornerOrder
	}
	return rowMajorOrder
}

func (m *Manager) firstFreeSlot() *Position {
	occupied := map[Position]bool{}
	for _, p := range m.open {
		if p.Position != nil {
			occupied[*p.Position] = true
		}
	}
	for _, pos := range m.ordering() {
		if !occupied[pos] {
			p := pos
			return &p
		}
	}
	return nil
}

// Open assigns the first free slot from the mode's preference ordering
// and appends to the open set. A full grid drops the request silently.
// Opening an id that is already open is not deduplicated here; that is
// the dispatcher's job.
func (m *Manager) Open(d catalog.Descriptor, ctx map[string]any) (Open, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.firstFreeSlot()
	if slot == nil {
		m.log.WithField("portal", d.ID).Warn("grid full, open dropped")
		return Open{}, false
	}
	p := &Open{Descriptor: d, Position: slot, Context: cloneContext(ctx)}
	m.open = append(m.open, p)
	m.log.WithFields(logger.Fields{"portal": d.ID, "row": slot.Row, "col": slot.Col}).Info("portal opened")
	return *p, true
}

// Close removes the portal from the grid set; if it also holds the
// fullscreen slot, that is cleared too. Closing a closed id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked(id)
}

func (m *Manager) closeLocked(id string) {
	kept := m.open[:0]
	for _, p := range m.open {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.open = kept
	if m.fullscreen != nil && m.fullscreen.ID == id {
		m.fullscreen = nil
	}
}

// CloseAll clears the grid set and the fullscreen slot unconditionally.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = nil
	m.fullscreen = nil
}

// Toggle closes the portal if it is in the grid set and opens it
// otherwise. The fullscreen slot is untouched either way.
func (m *Manager) Toggle(d catalog.Descriptor) {
	m.mu.Lock()
	inGrid := m.inGridLocked(d.ID)
	if inGrid {
		kept := m.open[:0]
		for _, p := range m.open {
			if p.ID != d.ID {
				kept = append(kept, p)
			}
		}
		m.open = kept
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.Open(d, nil)
}

// OpenFullscreen puts the portal in the fullscreen slot, replacing any
// previous occupant, and signals assistant deactivation.
func (m *Manager) OpenFullscreen(d catalog.Descriptor, ctx map[string]any) {
	m.mu.Lock()
	m.fullscreen = &Open{Descriptor: d, Context: cloneContext(ctx)}
	cb := m.onFullscreen
	m.mu.Unlock()

	m.log.WithField("portal", d.ID).Info("portal fullscreen")
	if cb != nil {
		cb(d)
	}
}

// CloseFullscreen clears only the fullscreen slot.
func (m *Manager) CloseFullscreen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fullscreen = nil
}

// ExpandToFullscreen promotes a portal to fullscreen, resolving the id
// first in the grid set and then in the catalog. The grid entry, when
// present, stays where it is. Returns false for an unknown id.
func (m *Manager) ExpandToFullscreen(id string) bool {
	m.mu.Lock()
	var promoted *Open
	for _, p := range m.open {
		if p.ID == id {
			promoted = p
			break
		}
	}
	if promoted == nil {
		d, ok := catalog.ByID(id)
		if !ok {
			m.mu.Unlock()
			m.log.WithField("portal", id).Warn("expand of unknown portal dropped")
			return false
		}
		promoted = &Open{Descriptor: d}
	}
	m.fullscreen = promoted
	cb := m.onFullscreen
	d := promoted.Descriptor
	m.mu.Unlock()

	m.log.WithField("portal", id).Info("portal expanded to fullscreen")
	if cb != nil {
		cb(d)
	}
	return true
}

// UpdateContext merges ctx into an open portal (grid or fullscreen) and
// reports whether the portal was open. A false return tells the caller
// to open the portal fresh with that context instead.
func (m *Manager) UpdateContext(id string, ctx map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, p := range m.open {
		if p.ID == id {
			mergeContext(p, ctx)
			found = true
		}
	}
	if m.fullscreen != nil && m.fullscreen.ID == id {
		mergeContext(m.fullscreen, ctx)
		found = true
	}
	return found
}

// ReplaceContext swaps the portal's context wholesale and bumps its
// Version counter so the widget remounts with the new context. Returns
// false when the portal is not open. A promoted portal shares one entry
// between the grid and the fullscreen slot; it is replaced exactly once
// so Version counts replacements.
func (m *Manager) ReplaceContext(id string, ctx map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, p := range m.open {
		if p.ID == id {
			p.Context = cloneContext(ctx)
			p.Version++
			found = true
		}
	}
	if m.fullscreen != nil && m.fullscreen.ID == id && !m.fullscreenSharesGridEntryLocked() {
		m.fullscreen.Context = cloneContext(ctx)
		m.fullscreen.Version++
		found = true
	}
	return found
}

func (m *Manager) fullscreenSharesGridEntryLocked() bool {
	for _, p := range m.open {
		if p == m.fullscreen {
			return true
		}
	}
	return false
}

// SetLayoutMode reassigns every grid slot from the new preference
// ordering, preserving insertion order. Setting the current mode again
// still reflows, which is a no-op position-wise.
func (m *Manager) SetLayoutMode(mode LayoutMode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mode = mode
	order := m.ordering()
	i := 0
	for _, p := range m.open {
		if p.Position == nil {
			continue
		}
		if i < len(order) {
			pos := order[i]
			p.Position = &pos
			i++
		}
	}
}

// Mode returns the current layout mode.
func (m *Manager) Mode() LayoutMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// HasOpenPortals reports whether anything is displayed, grid or
// fullscreen.
func (m *Manager) HasOpenPortals() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open) > 0 || m.fullscreen != nil
}

// InGrid reports whether the id is in the grid set.
func (m *Manager) InGrid(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inGridLocked(id)
}

func (m *Manager) inGridLocked(id string) bool {
	for _, p := range m.open {
		if p.ID == id {
			return true
		}
	}
	return false
}

// OpenIDs lists the ids of everything displayed, grid order first, the
// fullscreen portal appended when it is not also in the grid.
func (m *Manager) OpenIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.open)+1)
	for _, p := range m.open {
		ids = append(ids, p.ID)
	}
	if m.fullscreen != nil && !m.inGridLocked(m.fullscreen.ID) {
		ids = append(ids, m.fullscreen.ID)
	}
	return ids
}

// Grid returns a snapshot of the grid set in insertion order.
func (m *Manager) Grid() []Open {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Open, 0, len(m.open))
	for _, p := range m.open {
		out = append(out, *p)
	}
	return out
}

// Fullscreen returns a snapshot of the fullscreen slot.
func (m *Manager) Fullscreen() (Open, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fullscreen == nil {
		return Open{}, false
	}
	return *m.fullscreen, true
}

func mergeContext(p *Open, ctx map[string]any) {
	if len(ctx) == 0 {
		return
	}
	if p.Context == nil {
		p.Context = make(map[string]any, len(ctx))
	}
	for k, v := range ctx {
		p.Context[k] = v
	}
}

func cloneContext(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
