package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry holds the tool vocabulary and dispatches calls by name.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	log   zerolog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
		log:   log.With().Str("component", "tools").Logger(),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	r.tools[tool.Name] = tool
	r.log.Debug().Str("tool", tool.Name).Msg("registered tool")
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static registration at construction time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute dispatches a tool call by name against the given session.
// Unknown tools and invalid arguments come back as failure Results so the
// caller can narrate them; the error return carries the same condition for
// callers that want to branch on it.
func (r *Registry) Execute(ctx context.Context, sess Session, name string, args Args) (Result, error) {
	tool := r.Get(name)
	if tool == nil {
		res := Failf("unknown tool %q", name)
		res.Tool = name
		return res, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if err := validateArgs(tool, args); err != nil {
		res := Fail(err.Error())
		res.Tool = name
		return res, err
	}

	start := time.Now()
	result := tool.Handler(ctx, sess, args)
	result.Tool = name

	r.log.Debug().
		Str("tool", name).
		Bool("success", result.Success).
		Dur("duration", time.Since(start)).
		Msg("tool executed")

	return result, nil
}

// validateArgs checks required presence and loose type agreement against the
// tool's schema. Unknown extra arguments are tolerated.
func validateArgs(tool *Tool, args Args) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}

	for key, prop := range tool.Schema.Properties {
		v, ok := args[key]
		if !ok {
			continue
		}
		if !typeMatches(prop.Type, v) {
			return fmt.Errorf("%w: %s expects %s", ErrInvalidArgType, key, prop.Type)
		}
	}
	return nil
}

func typeMatches(schemaType string, v any) bool {
	switch schemaType {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "integer", "number":
		switch v.(type) {
		case int, int64, float64:
			return true
		}
		return false
	default:
		return true
	}
}
