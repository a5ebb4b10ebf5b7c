package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kraken-console/internal/agent"
	"kraken-console/internal/alerts"
	"kraken-console/internal/assistant"
	"kraken-console/internal/catalog"
	"kraken-console/internal/command"
	"kraken-console/internal/config"
	"kraken-console/internal/events"
	"kraken-console/internal/history"
	"kraken-console/internal/logger"
	"kraken-console/internal/portal"
)

type Options struct {
	Config      config.Config
	Portals     *portal.Manager
	Assistant   *assistant.Controller
	Dispatcher  *command.Dispatcher
	Interpreter *agent.Interpreter
	Poller      *alerts.Poller
	Store       *alerts.Store
	Bus         *events.Bus
	History     *history.Store
}

type commandResultMsg struct {
	Result agent.Result
}

type alertReplyMsg struct {
	Result agent.Result
}

type busEventMsg struct {
	Event any
}

type Model struct {
	textarea    textarea.Model
	spin        spinner.Model
	portals     *portal.Manager
	assistant   *assistant.Controller
	dispatcher  *command.Dispatcher
	interpreter *agent.Interpreter
	poller      *alerts.Poller
	store       *alerts.Store
	busSub      <-chan any
	history     *history.Store
	recall      commandRecall

	width      int
	height     int
	pending    bool
	err        error
	connected  bool
	connErr    string
	lastAction string
	// tray is the edge revealed by mouse proximity, or "" when hidden.
	tray     catalog.Edge
	alertSel int

	log *logger.LogEntry
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = "Speak to Kraken…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.SetWidth(38)
	ti.SetHeight(1)
	ti.ShowLineNumbers = false
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF"))

	m := Model{
		textarea:    ti,
		spin:        spin,
		portals:     opts.Portals,
		assistant:   opts.Assistant,
		dispatcher:  opts.Dispatcher,
		interpreter: opts.Interpreter,
		poller:      opts.Poller,
		store:       opts.Store,
		width:       120,
		height:      36,
		log:         logger.Named("tui"),
	}
	if opts.Bus != nil {
		m.busSub = opts.Bus.Subscribe()
	}
	if opts.History != nil {
		m.history = opts.History
		if cmds, err := opts.History.Commands(); err == nil {
			m.recall.Set(cmds)
		}
	}
	return &m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textarea.Blink}
	if cmd := m.listenBus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(panelWidth(m.width) - 4)
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		return m.finish(cmds...)
	case busEventMsg:
		if cmd := m.handleBusEvent(msg.Event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if cmd := m.listenBus(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case commandResultMsg:
		m.pending = false
		m.assistant.AddReply(msg.Result.Message)
		if msg.Result.Action != nil {
			m.lastAction = msg.Result.Action.Name()
		}
		m.syncLayout()
		return m.finish(cmds...)
	case alertReplyMsg:
		m.assistant.ReplaceImmediate(msg.Result.Message)
		return m.finish(cmds...)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m.finish(cmds...)
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m.finish(cmds...)
		}
	}

	if m.assistant.Visible() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m.finish(cmds...)
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		// q only quits while the composer is hidden; otherwise it types.
		if !m.assistant.Visible() {
			return tea.Quit, true
		}
		return nil, false
	case "ctrl+@", "ctrl+2", "f2":
		m.assistant.Activate()
		m.textarea.Focus()
		m.syncLayout()
		return nil, true
	case "esc":
		m.handleEscape()
		return nil, true
	case "up", "down":
		if m.alertsFullscreen() {
			m.moveAlertSelection(msg.String())
			return nil, true
		}
		if m.assistant.Visible() {
			m.browseRecall(msg.String())
			return nil, true
		}
		return nil, false
	case "ctrl+y":
		if m.alertsFullscreen() {
			m.copySelectedAlert()
			return nil, true
		}
		return nil, false
	case "y":
		// Plain y copies only while the composer is hidden; otherwise it
		// types. ctrl+y works either way.
		if m.alertsFullscreen() && !m.assistant.Visible() {
			m.copySelectedAlert()
			return nil, true
		}
		return nil, false
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.tray != "" {
			m.toggleTrayItem(int(msg.Runes[0] - '0'))
			return nil, true
		}
		return nil, false
	case "enter":
		if !m.assistant.Visible() || m.pending {
			return nil, true
		}
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return nil, true
		}
		if strings.HasPrefix(input, "/") {
			m.runSearch(input)
			return nil, true
		}
		m.assistant.AddUserMessage(input)
		m.recall.Add(input)
		if m.history != nil {
			if err := m.history.Append(input); err != nil {
				m.log.WithField("error", err.Error()).Warn("history append failed")
			}
		}
		m.textarea.Reset()
		m.pending = true
		return m.submitCommand(input), true
	}
	return nil, false
}

// handleEscape unwinds one layer: fullscreen first, then the assistant
// panel. Closing the alert portal's fullscreen view releases the
// assistant's alert lock.
func (m *Model) handleEscape() {
	if fs, ok := m.portals.Fullscreen(); ok {
		m.portals.CloseFullscreen()
		m.alertSel = 0
		if fs.ID == "alerts" {
			m.assistant.AlertFullscreenClosed()
		}
		m.syncLayout()
		return
	}
	if m.assistant.Visible() {
		m.assistant.ClosePanel(m.portals.HasOpenPortals())
		m.syncLayout()
	}
}

// handleMouse reveals the edge tray nearest the pointer and toggles a
// side-tray portal on click.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.tray == catalog.EdgeLeft || m.tray == catalog.EdgeRight {
			m.toggleTrayItem(msg.Y - 1)
		}
		return
	}

	switch {
	case msg.Y <= 0:
		m.tray = catalog.EdgeTop
	case msg.X <= 1:
		m.tray = catalog.EdgeLeft
	case msg.X >= m.width-2:
		m.tray = catalog.EdgeRight
	default:
		m.tray = ""
	}
}

func (m *Model) toggleTrayItem(n int) {
	items := catalog.Tray(m.tray)
	if n < 1 || n > len(items) {
		return
	}
	m.portals.Toggle(items[n-1])
	m.syncLayout()
}

// runSearch is the /query portal search: fuzzy-match the catalog and
// toggle the best match. While the query is being typed the panel shows
// the live candidate list.
func (m *Model) runSearch(input string) {
	query := strings.TrimSpace(strings.TrimPrefix(input, "/"))
	m.textarea.Reset()
	if query == "" {
		return
	}
	matches := catalog.Match(query)
	if len(matches) == 0 {
		m.assistant.AddReply(fmt.Sprintf("No portal matches %q.", query))
		return
	}
	d := matches[0]
	m.portals.Toggle(d)
	if m.portals.InGrid(d.ID) {
		m.assistant.AddReply(fmt.Sprintf("Opening %s portal.", d.Title))
	} else {
		m.assistant.AddReply(fmt.Sprintf("Closing %s portal.", d.Title))
	}
	m.syncLayout()
}

func (m *Model) browseRecall(key string) {
	if key == "up" {
		if text, ok := m.recall.Prev(m.textarea.Value()); ok {
			m.textarea.SetValue(text)
		}
		return
	}
	if text, ok := m.recall.Next(); ok {
		m.textarea.SetValue(text)
	}
}

func (m *Model) moveAlertSelection(key string) {
	n := len(m.visibleAlerts())
	if n == 0 {
		m.alertSel = 0
		return
	}
	if key == "up" && m.alertSel > 0 {
		m.alertSel--
	}
	if key == "down" && m.alertSel < n-1 {
		m.alertSel++
	}
}

func (m *Model) copySelectedAlert() {
	list := m.visibleAlerts()
	if m.alertSel >= len(list) {
		return
	}
	a := list[m.alertSel]
	text := fmt.Sprintf("[%s] %s — %s (%s)", strings.ToUpper(a.Severity), a.Title, a.Description, a.Status)
	if err := clipboard.WriteAll(text); err != nil {
		m.err = err
		return
	}
	m.log.WithField("alert", a.ID).Info("alert copied to clipboard")
}

// visibleAlerts is the fullscreen alert list: backend snapshot first,
// then the local store, filters applied to the local half only.
func (m *Model) visibleAlerts() []alerts.Alert {
	var backend []alerts.Alert
	if m.poller != nil {
		backend = m.poller.Status().Snapshot.Alerts
	}
	local := m.store.Filtered()
	out := make([]alerts.Alert, 0, len(backend)+len(local))
	out = append(out, backend...)
	out = append(out, local...)
	return out
}

func (m *Model) submitCommand(input string) tea.Cmd {
	return func() tea.Msg {
		res := m.interpreter.ProcessCommand(context.Background(), input)
		if res.OK && res.Action != nil {
			m.dispatcher.Dispatch(context.Background(), res.Action)
		}
		return commandResultMsg{Result: res}
	}
}

func (m *Model) listenBus() tea.Cmd {
	if m.busSub == nil {
		return nil
	}
	sub := m.busSub
	return func() tea.Msg {
		evt, ok := <-sub
		if !ok {
			return nil
		}
		return busEventMsg{Event: evt}
	}
}

func (m *Model) handleBusEvent(evt any) tea.Cmd {
	switch ev := evt.(type) {
	case events.AlertRaised:
		return m.interruptForAlert(ev.Alert)
	case events.ConnectionChanged:
		m.connected = ev.Connected
		m.connErr = ev.Err
	case events.CommandDispatched:
		m.lastAction = ev.Name
	}
	return nil
}

// interruptForAlert runs the alert scenario: lock the assistant open,
// post the placeholder announcement, take the fullscreen slot with the
// alert portal and ask the model for the spoken assessment that will
// replace the placeholder. The lock must be in place before the
// fullscreen open, or the auto-close request would hide the panel.
func (m *Model) interruptForAlert(a alerts.Alert) tea.Cmd {
	m.assistant.LockForAlert()
	m.assistant.AddImmediate(fmt.Sprintf("Priority alert: %s. %s", a.Title, a.Description))
	if d, ok := catalog.ByID("alerts"); ok {
		m.portals.OpenFullscreen(d, map[string]any{"alertId": a.ID, "severity": a.Severity})
	}
	m.alertSel = 0
	m.syncLayout()

	if m.interpreter == nil || !m.interpreter.Ready() {
		return nil
	}
	prompt := fmt.Sprintf("A new %s severity alert just arrived: %s. %s Brief the operator in one or two sentences.",
		a.Severity, a.Title, a.Description)
	return func() tea.Msg {
		return alertReplyMsg{Result: m.interpreter.ProcessCommand(context.Background(), prompt)}
	}
}

// syncLayout keeps the grid ordering and the assistant state machine in
// step after any mutation: an empty display returns the assistant to
// the centered affordance, and a visible panel switches the grid to the
// corner-avoiding ordering.
func (m *Model) syncLayout() {
	if !m.portals.HasOpenPortals() {
		m.assistant.PortalsClosed()
	}
	if m.assistant.Visible() {
		m.portals.SetLayoutMode(portal.LayoutCorner)
	} else {
		m.portals.SetLayoutMode(portal.LayoutIdle)
	}
}

func (m *Model) alertsFullscreen() bool {
	fs, ok := m.portals.Fullscreen()
	return ok && fs.ID == "alerts"
}

// History returns the conversation for the caller once the program
// exits.
func (m *Model) History() []assistant.Message {
	return m.assistant.Messages()
}
