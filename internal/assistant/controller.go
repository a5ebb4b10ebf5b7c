package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"kraken-console/internal/logger"
)

// State is the assistant panel's explicit mode. Illegal flag
// combinations from the old visible/latch/alert booleans are not
// representable here.
type State int

const (
	// StateIdle renders the large centered affordance; nothing is open.
	StateIdle State = iota
	// StateActive renders the compact corner panel.
	StateActive
	// StateActiveLockedByAlert is Active plus an alert lock that
	// suppresses automatic close requests until the alert's fullscreen
	// view goes away.
	StateActiveLockedByAlert
)

// Role tags a conversation message.
type Role string

const (
	RoleUser   Role = "user"
	RoleKraken Role = "kraken"
)

// Message is one conversation entry. Immediate marks a synthesized
// placeholder that the interpreter's reply will replace.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	Immediate bool
}

// Greeting is seeded into every new conversation.
const Greeting = "Good morning. Kraken interface online."

// Controller owns the panel state machine and the conversation history.
type Controller struct {
	mu sync.Mutex

	state   State
	visible bool

	messages    []Message
	immediateID string

	log *logger.LogEntry
}

func NewController() *Controller {
	c := &Controller{log: logger.Named("assistant")}
	c.messages = []Message{{
		ID:        uuid.NewString(),
		Role:      RoleKraken,
		Content:   Greeting,
		Timestamp: time.Now(),
	}}
	return c
}

// State returns the current mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Visible reports whether the corner panel is shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Activate shows the panel. Idle flips to Active; an alert lock stays
// locked.
func (c *Controller) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.state = StateActive
	}
	c.visible = true
}

// ClosePanel is the user explicitly dismissing the panel. The state
// only returns to Idle when no portals remain open; otherwise the
// corner mode stays latched and just the panel hides.
func (c *Controller) ClosePanel(hasOpenPortals bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = false
	if !hasOpenPortals {
		c.state = StateIdle
		return
	}
	if c.state == StateIdle {
		c.state = StateActive
	}
}

// PortalsClosed is called when the open-portal count drops to zero. If
// the panel is already dismissed, the controller can finally return to
// the centered affordance.
func (c *Controller) PortalsClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		c.state = StateIdle
	}
}

// LockForAlert forces the panel visible and pins it open for the
// duration of an alert scenario.
func (c *Controller) LockForAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateActiveLockedByAlert
	c.visible = true
	c.log.Info("assistant locked by alert scenario")
}

// RequestAutoClose is an automatic flow (a fullscreen open) asking the
// panel to get out of the way. The alert lock overrides it.
func (c *Controller) RequestAutoClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActiveLockedByAlert {
		c.log.Info("auto close suppressed by alert lock")
		return
	}
	c.visible = false
}

// AlertFullscreenClosed releases the alert lock once the fullscreen
// view the alert opened is gone.
func (c *Controller) AlertFullscreenClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActiveLockedByAlert {
		c.state = StateActive
	}
}

// AddUserMessage appends a user entry and returns it.
func (c *Controller) AddUserMessage(content string) Message {
	return c.append(RoleUser, content, false)
}

// AddReply appends an assistant entry and returns it.
func (c *Controller) AddReply(content string) Message {
	return c.append(RoleKraken, content, false)
}

// AddImmediate appends a synthesized placeholder that ReplaceImmediate
// will later swap out. A second immediate replaces the first.
func (c *Controller) AddImmediate(content string) Message {
	c.mu.Lock()
	if c.immediateID != "" {
		for i := range c.messages {
			if c.messages[i].ID == c.immediateID {
				c.messages[i].Content = content
				c.messages[i].Timestamp = time.Now()
				msg := c.messages[i]
				c.mu.Unlock()
				return msg
			}
		}
	}
	c.mu.Unlock()
	msg := c.append(RoleKraken, content, true)
	c.mu.Lock()
	c.immediateID = msg.ID
	c.mu.Unlock()
	return msg
}

// ReplaceImmediate swaps the placeholder's content for the
// interpreter's reply. Both success and failure replies clear the
// placeholder. Without a pending placeholder the reply is appended.
func (c *Controller) ReplaceImmediate(content string) Message {
	c.mu.Lock()
	if c.immediateID != "" {
		for i := range c.messages {
			if c.messages[i].ID == c.immediateID {
				c.messages[i].Content = content
				c.messages[i].Immediate = false
				c.messages[i].Timestamp = time.Now()
				c.immediateID = ""
				msg := c.messages[i]
				c.mu.Unlock()
				return msg
			}
		}
		c.immediateID = ""
	}
	c.mu.Unlock()
	return c.append(RoleKraken, content, false)
}

// Messages returns a snapshot of the conversation.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) append(role Role, content string, immediate bool) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Immediate: immediate,
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}
