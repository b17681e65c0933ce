// Package registry manages the named commands a model exposes and
// publishes their schema document. The transport hosting the model
// registers commands once at startup and calls Describe to export the
// JSON-compatible interface for remote callers.
package registry

import (
	"fmt"
	"sync"

	"github.com/dvschultz/MUNIT-runway/core/types"
)

// Command is one named model operation with its typed interface.
type Command struct {
	Name        string
	Description string
	Inputs      []types.Type
	Outputs     []types.Type
}

// Registry holds registered commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Duplicate names are rejected. Inputs and
// outputs without a name receive positional ones.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}

	for i, in := range cmd.Inputs {
		if in.Name() == "" {
			in.SetName(fmt.Sprintf("input_%d", i))
		}
	}
	for i, out := range cmd.Outputs {
		if out.Name() == "" {
			out.SetName(fmt.Sprintf("output_%d", i))
		}
	}

	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	return nil
}

// Lookup returns a registered command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Describe exports the schema document for all registered commands, in
// registration order.
func (r *Registry) Describe() []types.Dict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Dict, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		out = append(out, types.Dict{
			"name":        cmd.Name,
			"description": description(cmd.Description),
			"inputs":      describeAll(cmd.Inputs),
			"outputs":     describeAll(cmd.Outputs),
		})
	}
	return out
}

func describeAll(ts []types.Type) []types.Dict {
	out := make([]types.Dict, len(ts))
	for i, t := range ts {
		out[i] = t.Describe()
	}
	return out
}

func description(s string) any {
	if s == "" {
		return nil
	}
	return s
}
