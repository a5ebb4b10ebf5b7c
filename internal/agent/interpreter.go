package agent

import (
	"context"
	"fmt"
	"strings"

	"kraken-console/internal/catalog"
	"kraken-console/internal/command"
	"kraken-console/internal/logger"
)

// Fallback messages for the conversation.
const (
	msgNotInitialized = "Kraken AI is not properly initialized. Please check your API key configuration."
	msgNotUnderstood  = "I did not understand that command. Please try rephrasing."
	msgProcessError   = "I encountered an error processing your command. Please try again."
)

// Result is the interpreter's tagged outcome: a conversational message
// and, when the model called a function, the parsed action.
type Result struct {
	OK      bool
	Message string
	Action  command.Action
}

// Interpreter turns free text into a Result via the remote model.
type Interpreter struct {
	client ModelClient
	model  string
	log    *logger.LogEntry
}

// NewInterpreter accepts a nil client; every command then resolves to
// the not-initialized fallback.
func NewInterpreter(client ModelClient, model string) *Interpreter {
	return &Interpreter{client: client, model: model, log: logger.Named("interpreter")}
}

// Ready reports whether a model client is configured.
func (it *Interpreter) Ready() bool {
	return it.client != nil
}

// ProcessCommand sends one user utterance to the model with the command
// tools attached. Transport errors and unknown function names degrade
// to conversational fallbacks; they never propagate.
func (it *Interpreter) ProcessCommand(ctx context.Context, input string) Result {
	if it.client == nil {
		return Result{OK: false, Message: msgNotInitialized}
	}

	completion, err := it.client.Complete(ctx, Prompt{
		Model: it.model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt()},
			{Role: RoleUser, Content: input},
		},
		Tools:       CommandTools(),
		Temperature: 0.3,
	})
	if err != nil {
		it.log.WithField("error", err.Error()).Warn("model call failed")
		return Result{OK: false, Message: msgProcessError}
	}

	if completion.Call != nil {
		action, err := command.Parse(completion.Call.Name, completion.Call.Arguments)
		if err != nil {
			it.log.WithFields(logger.Fields{"call": completion.Call.Name, "error": err.Error()}).Warn("function call rejected")
			return Result{OK: false, Message: msgNotUnderstood}
		}
		it.log.WithField("action", action.Name()).Info("command interpreted")
		return Result{OK: true, Message: acknowledgement(action), Action: action}
	}
	if completion.Text != "" {
		return Result{OK: true, Message: completion.Text}
	}
	return Result{OK: false, Message: msgNotUnderstood}
}

// acknowledgement is the canned per-action reply shown while the
// dispatcher applies the command.
func acknowledgement(action command.Action) string {
	switch a := action.(type) {
	case command.OpenPortal:
		return fmt.Sprintf("Opening %s portal in %s.", portalName(a.PortalType), levelName(a.Level))
	case command.ClosePortal:
		if a.PortalType == "all" {
			return "Closing all portals."
		}
		return fmt.Sprintf("Closing %s portal.", portalName(a.PortalType))
	case command.ShowWeather:
		location := a.Location
		if location == "" {
			location = "current location"
		}
		return fmt.Sprintf("Displaying weather information for %s in %s.", location, levelName(a.Level))
	case command.AnalyzeThreats:
		severity := a.SeverityFilter
		if severity == "" {
			severity = "all"
		}
		return fmt.Sprintf("Analyzing threats with %s severity levels.", severity)
	case command.NavigateMap:
		return fmt.Sprintf("Performing map action: %s.", a.Action)
	case command.ControlInterface:
		return fmt.Sprintf("Executing interface control: %s.", a.Action)
	default:
		return "Command executed successfully."
	}
}

func portalName(id string) string {
	return strings.ReplaceAll(id, "-", " ")
}

func levelName(level int) string {
	if level == 3 {
		return "fullscreen"
	}
	return "grid view"
}

func systemPrompt() string {
	var portals []string
	for _, d := range catalog.All() {
		portals = append(portals, fmt.Sprintf("%s (%s)", d.ID, d.Title))
	}
	return fmt.Sprintf(`You are Kraken AI, an advanced AI assistant for a military command and control interface.

Available portals: %s

You can control the interface through function calls. Always respond professionally and concisely.
When a user asks to open or show something, determine the most appropriate portal and level.

IMPORTANT LEVEL GUIDELINES:
- Level 2 (grid view): Default for most requests like "show weather", "open alerts", "open camera"
- Level 3 (fullscreen): Use when user explicitly asks for "fullscreen", "full screen", "maximize", "maximized", "expanded view", "expand", or similar terms

Portal Categories:
- System: weather, calendar, system status, network, power, security
- Specialized: map, timeline, alerts, camera-capability, messenger, data-view
- AI Engine: confidence-scoring, prioritization, coa-generator, asset-tasking

CRITICAL: For camera requests, ALWAYS use "camera-capability" as the portal_type.

Examples:
- "Show me the weather" -> open_portal(weather, level 2)
- "Open alerts fullscreen" -> open_portal(alerts, level 3)
- "Maximize the camera" -> open_portal(camera-capability, level 3)
- "Display the map" -> open_portal(map, level 2)
- "Close everything" -> close_portal(all)

Always use level 3 when the user requests fullscreen, maximized, expanded, or similar views.`, strings.Join(portals, ", "))
}
