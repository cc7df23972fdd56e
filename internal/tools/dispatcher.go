// Package tools routes tool invocations requested by the model to concrete
// collaborator calls. Dispatch is total: every input, valid or not, yields a
// JSON-serializable result or a structured error, because the output is
// rendered verbatim into the model's context.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Handler executes one tool with already-parsed arguments. Handlers return
// either a domain payload or an error-shaped map; they never panic by
// contract, and Dispatch guards against it anyway.
type Handler func(ctx context.Context, args map[string]any) any

type handlerEntry struct {
	required []string
	run      Handler
}

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]handlerEntry
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]handlerEntry)}
}

// Register adds a tool. The required names are validated against the parsed
// arguments before the handler runs, so handlers can assume they exist.
func (d *Dispatcher) Register(name string, required []string, run Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[name] = handlerEntry{required: required, run: run}
}

// Names returns the registered tool names, sorted.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch maps a tool name and raw JSON argument blob to a result value.
func (d *Dispatcher) Dispatch(ctx context.Context, name, rawArguments string) (result any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool handler panicked", "tool", name, "panic", r)
			result = errorResult("internal tool failure")
		}
	}()

	d.mu.RLock()
	entry, ok := d.handlers[name]
	d.mu.RUnlock()

	if !ok {
		return map[string]any{"error": "Unknown tool: " + name}
	}

	args := map[string]any{}
	if strings.TrimSpace(rawArguments) != "" {
		if err := json.Unmarshal([]byte(rawArguments), &args); err != nil {
			return errorResult("invalid JSON arguments: " + err.Error())
		}
	}

	if missing := missingParameters(args, entry.required); len(missing) > 0 {
		return errorResult("Missing required parameters: " + strings.Join(missing, ", "))
	}

	return entry.run(ctx, args)
}

func missingParameters(args map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		if value, ok := args[key]; !ok || value == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

func errorResult(message string) map[string]any {
	return map[string]any{"status": "error", "message": message}
}
