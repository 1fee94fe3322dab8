package event

import (
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"
)

// Decode parses one event occurrence from its wire JSON form:
//
//	{"event": "shell.before", "time": "...RFC3339...", "payload": {...}, "metadata": {...}}
//
// The payload fields read depend on the event type; fields outside the
// variant's shape are ignored. An unknown or missing event name is an error.
func Decode(data []byte) (*Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid event JSON")
	}

	name := gjson.GetBytes(data, "event")
	if !name.Exists() || name.String() == "" {
		return nil, fmt.Errorf("event field is required")
	}

	t := Type(name.String())
	if !t.Valid() {
		return nil, fmt.Errorf("unknown event type %q", name.String())
	}

	ev := newEvent(t)
	if ts := gjson.GetBytes(data, "time"); ts.Exists() {
		parsed, err := time.Parse(time.RFC3339, ts.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse event time: %w", err)
		}
		ev.Time = parsed
	}

	payload := gjson.GetBytes(data, "payload")
	decodePayload(ev, payload)

	if md := gjson.GetBytes(data, "metadata"); md.IsObject() {
		for key, value := range md.Map() {
			ev.Metadata[key] = value.Value()
		}
	}

	return ev, nil
}

// DecodeReader reads all of r and decodes it as one event occurrence.
func DecodeReader(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}
	return Decode(data)
}

// decodePayload copies the variant-specific payload fields onto ev.
func decodePayload(ev *Event, payload gjson.Result) {
	switch ev.Type {
	case TypeSessionStart:
		ev.SessionID = payload.Get("session_id").String()
		ev.Source = payload.Get("source").String()
	case TypeSessionEnd:
		ev.SessionID = payload.Get("session_id").String()
		ev.Reason = payload.Get("reason").String()
	case TypePromptSubmit:
		ev.Prompt = payload.Get("prompt").String()
	case TypePromptResponse:
		ev.Response = payload.Get("response").String()
	case TypeToolBefore, TypeToolAfter:
		ev.ToolName = payload.Get("tool_name").String()
		if input := payload.Get("tool_input"); input.IsObject() {
			ev.ToolInput = make(map[string]any)
			for key, value := range input.Map() {
				ev.ToolInput[key] = value.Value()
			}
		}
		if ev.Type == TypeToolAfter {
			ev.ToolResponse = payload.Get("tool_response").Value()
			ev.ToolError = payload.Get("tool_error").String()
		}
	case TypeFileWrite:
		ev.Path = payload.Get("path").String()
		ev.Content = payload.Get("content").String()
	case TypeFileEdit:
		ev.Path = payload.Get("path").String()
		ev.OldText = payload.Get("old_text").String()
		ev.NewText = payload.Get("new_text").String()
	case TypeFileDelete, TypeFileRead:
		ev.Path = payload.Get("path").String()
	case TypeShellBefore:
		ev.Command = payload.Get("command").String()
	case TypeShellAfter:
		ev.Command = payload.Get("command").String()
		ev.ExitCode = int(payload.Get("exit_code").Int())
		ev.Output = payload.Get("output").String()
	case TypeExternalBefore, TypeExternalAfter:
		ev.Service = payload.Get("service").String()
		ev.Operation = payload.Get("operation").String()
	case TypeNotification:
		ev.Message = payload.Get("message").String()
		ev.Level = payload.Get("level").String()
	}
}
