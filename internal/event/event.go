// Package event defines the closed taxonomy of lifecycle events emitted by
// AI coding assistants, split into before-events that may still be blocked
// and after-events that can only be observed.
package event

import "time"

// Phase classifies when an event fires relative to the action it describes.
type Phase string

const (
	// PhaseBefore events fire before the underlying action runs and may be blocked.
	PhaseBefore Phase = "before"
	// PhaseAfter events fire once the action has already happened.
	PhaseAfter Phase = "after"
)

// Type identifies one event variant. The type tag determines both the
// variant's field set and its phase class.
type Type string

const (
	TypeSessionStart   Type = "session.start"
	TypePromptSubmit   Type = "prompt.submit"
	TypeToolBefore     Type = "tool.before"
	TypeFileWrite      Type = "file.write"
	TypeFileEdit       Type = "file.edit"
	TypeFileDelete     Type = "file.delete"
	TypeShellBefore    Type = "shell.before"
	TypeExternalBefore Type = "external.before"

	TypeSessionEnd     Type = "session.end"
	TypePromptResponse Type = "prompt.response"
	TypeToolAfter      Type = "tool.after"
	TypeFileRead       Type = "file.read"
	TypeShellAfter     Type = "shell.after"
	TypeExternalAfter  Type = "external.after"
	TypeNotification   Type = "notification"
)

// phases maps every known type to its phase class.
var phases = map[Type]Phase{
	TypeSessionStart:   PhaseBefore,
	TypePromptSubmit:   PhaseBefore,
	TypeToolBefore:     PhaseBefore,
	TypeFileWrite:      PhaseBefore,
	TypeFileEdit:       PhaseBefore,
	TypeFileDelete:     PhaseBefore,
	TypeShellBefore:    PhaseBefore,
	TypeExternalBefore: PhaseBefore,

	TypeSessionEnd:     PhaseAfter,
	TypePromptResponse: PhaseAfter,
	TypeToolAfter:      PhaseAfter,
	TypeFileRead:       PhaseAfter,
	TypeShellAfter:     PhaseAfter,
	TypeExternalAfter:  PhaseAfter,
	TypeNotification:   PhaseAfter,
}

// Valid reports whether t names a known event variant.
func (t Type) Valid() bool {
	_, ok := phases[t]
	return ok
}

// Phase returns the phase class of t. Unknown types report PhaseAfter so
// that a malformed type can never be treated as blockable.
func (t Type) Phase() Phase {
	if p, ok := phases[t]; ok {
		return p
	}
	return PhaseAfter
}

// IsBefore reports whether events of type t fire before their action and
// are therefore eligible to be blocked.
func (t Type) IsBefore() bool {
	return t.Phase() == PhaseBefore
}

// Types returns every known event type. The result is a fresh slice in a
// stable order: before variants first, then after variants.
func Types() []Type {
	return []Type{
		TypeSessionStart,
		TypePromptSubmit,
		TypeToolBefore,
		TypeFileWrite,
		TypeFileEdit,
		TypeFileDelete,
		TypeShellBefore,
		TypeExternalBefore,
		TypeSessionEnd,
		TypePromptResponse,
		TypeToolAfter,
		TypeFileRead,
		TypeShellAfter,
		TypeExternalAfter,
		TypeNotification,
	}
}

// Event is one lifecycle event occurrence. Only the fields belonging to the
// variant named by Type are populated; constructors guarantee this.
type Event struct {
	Type     Type           `json:"event"`
	Time     time.Time      `json:"time"`
	Metadata map[string]any `json:"metadata,omitempty"`

	// session.start / session.end
	SessionID string `json:"session_id,omitempty"`
	Source    string `json:"source,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// prompt.submit / prompt.response
	Prompt   string `json:"prompt,omitempty"`
	Response string `json:"response,omitempty"`

	// tool.before / tool.after
	ToolName     string         `json:"tool_name,omitempty"`
	ToolInput    map[string]any `json:"tool_input,omitempty"`
	ToolResponse any            `json:"tool_response,omitempty"`
	ToolError    string         `json:"tool_error,omitempty"`

	// file.write / file.edit / file.delete / file.read
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	OldText string `json:"old_text,omitempty"`
	NewText string `json:"new_text,omitempty"`

	// shell.before / shell.after
	Command  string `json:"command,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Output   string `json:"output,omitempty"`

	// external.before / external.after
	Service   string `json:"service,omitempty"`
	Operation string `json:"operation,omitempty"`

	// notification
	Message string `json:"message,omitempty"`
	Level   string `json:"level,omitempty"`
}

// newEvent creates the common envelope shared by every variant.
func newEvent(t Type) *Event {
	return &Event{
		Type:     t,
		Time:     time.Now(),
		Metadata: make(map[string]any),
	}
}

// NewSessionStart creates a session.start event.
func NewSessionStart(sessionID, source string) *Event {
	ev := newEvent(TypeSessionStart)
	ev.SessionID = sessionID
	ev.Source = source
	return ev
}

// NewSessionEnd creates a session.end event.
func NewSessionEnd(sessionID, reason string) *Event {
	ev := newEvent(TypeSessionEnd)
	ev.SessionID = sessionID
	ev.Reason = reason
	return ev
}

// NewPromptSubmit creates a prompt.submit event.
func NewPromptSubmit(prompt string) *Event {
	ev := newEvent(TypePromptSubmit)
	ev.Prompt = prompt
	return ev
}

// NewPromptResponse creates a prompt.response event.
func NewPromptResponse(response string) *Event {
	ev := newEvent(TypePromptResponse)
	ev.Response = response
	return ev
}

// NewToolBefore creates a tool.before event.
func NewToolBefore(toolName string, input map[string]any) *Event {
	ev := newEvent(TypeToolBefore)
	ev.ToolName = toolName
	ev.ToolInput = input
	return ev
}

// NewToolAfter creates a tool.after event.
func NewToolAfter(toolName string, input map[string]any, response any, toolErr string) *Event {
	ev := newEvent(TypeToolAfter)
	ev.ToolName = toolName
	ev.ToolInput = input
	ev.ToolResponse = response
	ev.ToolError = toolErr
	return ev
}

// NewFileWrite creates a file.write event.
func NewFileWrite(path, content string) *Event {
	ev := newEvent(TypeFileWrite)
	ev.Path = path
	ev.Content = content
	return ev
}

// NewFileEdit creates a file.edit event.
func NewFileEdit(path, oldText, newText string) *Event {
	ev := newEvent(TypeFileEdit)
	ev.Path = path
	ev.OldText = oldText
	ev.NewText = newText
	return ev
}

// NewFileDelete creates a file.delete event.
func NewFileDelete(path string) *Event {
	ev := newEvent(TypeFileDelete)
	ev.Path = path
	return ev
}

// NewFileRead creates a file.read event.
func NewFileRead(path string) *Event {
	ev := newEvent(TypeFileRead)
	ev.Path = path
	return ev
}

// NewShellBefore creates a shell.before event.
func NewShellBefore(command string) *Event {
	ev := newEvent(TypeShellBefore)
	ev.Command = command
	return ev
}

// NewShellAfter creates a shell.after event.
func NewShellAfter(command string, exitCode int, output string) *Event {
	ev := newEvent(TypeShellAfter)
	ev.Command = command
	ev.ExitCode = exitCode
	ev.Output = output
	return ev
}

// NewExternalBefore creates an external.before event.
func NewExternalBefore(service, operation string) *Event {
	ev := newEvent(TypeExternalBefore)
	ev.Service = service
	ev.Operation = operation
	return ev
}

// NewExternalAfter creates an external.after event.
func NewExternalAfter(service, operation string) *Event {
	ev := newEvent(TypeExternalAfter)
	ev.Service = service
	ev.Operation = operation
	return ev
}

// NewNotification creates a notification event.
func NewNotification(message, level string) *Event {
	ev := newEvent(TypeNotification)
	ev.Message = message
	ev.Level = level
	return ev
}
