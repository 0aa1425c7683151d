// Package tools exposes the briefing navigation engine as a small discrete
// command vocabulary consumed by an upstream reasoning component. Each tool
// is pure dispatch: it maps a named call with loosely typed arguments onto
// Session operations and reports the outcome, holding no state of its own.
package tools

import (
	"context"
	"fmt"

	"github.com/colonyops/briefly/internal/core/briefing"
)

// Session is the surface a tool handler may drive. The briefing service
// implements it; handlers never touch the tracker or registry directly.
type Session interface {
	// Advance marks the current item handled and moves to the next pending item.
	Advance() (briefing.Cursor, error)

	// SkipTopic bulk-skips the remaining pending items in the current topic.
	// Returns the new cursor and how many items were skipped.
	SkipTopic(reason string) (briefing.Cursor, int, error)

	// GoBack rewinds the cursor by steps without changing item statuses.
	GoBack(steps int) (briefing.Cursor, error)

	// Pause and Resume toggle the paused flag. Pausing a paused session
	// (or resuming a running one) is a reported failure.
	Pause() error
	Resume() error

	// Stop ends the session. When saveProgress is true the caller flushes
	// all handled records before shutdown.
	Stop(saveProgress bool) error

	// Reporter exposes read-only progress snapshots.
	Reporter() *briefing.Reporter
}

// Property describes a single argument for a tool's JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// Schema defines the argument contract for a tool. It is handed verbatim
// to the reasoning component as the tool-calling schema.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// Args is the loosely typed argument bag decoded from a tool call.
type Args map[string]any

// String returns the named argument as a string, or fallback if absent.
func (a Args) String(key, fallback string) string {
	v, ok := a[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// Int returns the named argument as an int, or fallback if absent.
// JSON decoding yields float64 for numbers, so both forms are accepted.
func (a Args) Int(key string, fallback int) int {
	v, ok := a[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return fallback
	}
}

// Bool returns the named argument as a bool, or fallback if absent.
func (a Args) Bool(key string, fallback bool) bool {
	v, ok := a[key]
	if !ok {
		return fallback
	}
	b, ok := v.(bool)
	if !ok {
		return fallback
	}
	return b
}

// HandlerFunc executes one tool call against a session.
type HandlerFunc func(ctx context.Context, sess Session, args Args) Result

// Tool is one named command in the vocabulary.
type Tool struct {
	// Name is the unique identifier, matching the upstream tool-call name.
	Name string

	// Description explains the tool to the reasoning component.
	Description string

	// Schema defines the expected arguments.
	Schema Schema

	// Handler runs the tool.
	Handler HandlerFunc
}

// Validate checks that the tool definition is usable.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Handler == nil {
		return ErrToolHandlerNil
	}
	return nil
}

// Result is the outcome of one tool call. A failed navigation (nothing to go
// back to, already paused) is a failure Result, never a Go error: the caller
// narrates it and the session stays intact.
type Result struct {
	Tool    string         `json:"tool"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Ok builds a success result.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Okf builds a formatted success result.
func Okf(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failure result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// Failf builds a formatted failure result.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// WithData attaches a data map to the result.
func (r Result) WithData(data map[string]any) Result {
	r.Data = data
	return r
}
