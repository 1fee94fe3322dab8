package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// AuditRecord is the structured observation the audit hook attaches to
// every after-event and writes to its sink.
type AuditRecord struct {
	Time        time.Time  `json:"time"`
	ExecutionID string     `json:"execution_id"`
	EventType   event.Type `json:"event"`
	Tool        string     `json:"tool"`
	ToolVersion string     `json:"tool_version,omitempty"`
	WorkDir     string     `json:"work_dir,omitempty"`
	Subject     string     `json:"subject,omitempty"`
}

// Sink persists audit records.
//
//go:generate go run go.uber.org/mock/mockgen -source=audit.go -destination=mock_sink.go -package=policy
type Sink interface {
	Write(record AuditRecord) error
}

// fileSink appends records as JSON lines, holding a file lock so
// concurrent chain executions do not interleave partial lines.
type fileSink struct {
	path string
}

// NewFileSink creates a Sink appending JSON lines to path. Parent
// directories are created on first write.
func NewFileSink(path string) Sink {
	return &fileSink{path: path}
}

func (s *fileSink) Write(record AuditRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	fileLock := flock.New(s.path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock audit log: %w", err)
	}
	defer func() {
		_ = fileLock.Unlock()
	}()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// NewAuditLog builds an after-hook that records every after-event to sink
// and attaches the record as observational data. It never blocks.
func NewAuditLog(sink Sink) (hook.Definition, error) {
	afterTypes := make([]event.Type, 0)
	for _, t := range event.Types() {
		if !t.IsBefore() {
			afterTypes = append(afterTypes, t)
		}
	}

	handler := func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
		ev := hctx.Event()
		record := AuditRecord{
			Time:        ev.Time,
			ExecutionID: hctx.ExecutionID(),
			EventType:   ev.Type,
			Tool:        hctx.Tool().Name,
			ToolVersion: hctx.Tool().Version,
			WorkDir:     hctx.WorkDir(),
			Subject:     auditSubject(ev),
		}
		if err := sink.Write(record); err != nil {
			return hook.Outcome{}, fmt.Errorf("audit sink: %w", err)
		}
		return hook.Observe(record), nil
	}

	return hook.New(event.PhaseAfter, afterTypes, handler).
		ID("audit-log").
		Name("Audit log").
		Description("Records every after-event to the audit log").
		Priority(999).
		Build()
}

// auditSubject summarizes what the event acted on, per variant.
func auditSubject(ev *event.Event) string {
	switch ev.Type {
	case event.TypeSessionEnd:
		return ev.SessionID
	case event.TypePromptResponse:
		return fmt.Sprintf("response (%d bytes)", len(ev.Response))
	case event.TypeToolAfter:
		return ev.ToolName
	case event.TypeFileRead:
		return ev.Path
	case event.TypeShellAfter:
		return ev.Command
	case event.TypeExternalAfter:
		return fmt.Sprintf("%s/%s", ev.Service, ev.Operation)
	case event.TypeNotification:
		return ev.Message
	}
	return ""
}
