// Package registry holds the static, ordered definition of workflow steps.
// The registry is built once at bootstrap, validated, and never mutated
// afterwards - step handlers are typed closures resolved at initialisation,
// not looked up by name at runtime.
package registry

import (
	"context"
	"fmt"

	"github.com/talentops/onboard/model"
)

// Kind classifies how a step makes progress.
type Kind string

const (
	// KindHumanInput steps accept supplied field updates and persist them.
	KindHumanInput Kind = "human-input"
	// KindAutomatic steps call an external service synchronously.
	KindAutomatic Kind = "automatic"
	// KindWaitForCallback steps suspend the process until an external event
	// arrives and is validated against the recorded correlation id.
	KindWaitForCallback Kind = "wait-for-callback"
)

// ActionFunc executes a step's side effect. For human-input steps fields
// carries the submitted updates; for automatic steps it is ignored.
type ActionFunc func(ctx context.Context, proc *model.Process, fields map[string]string) error

// ReadyFunc reports whether a wait-for-callback step's awaited event has
// already been recorded on the process, i.e. the step may complete instead
// of suspending.
type ReadyFunc func(proc *model.Process) bool

// Definition describes a single step of the linear chain.
type Definition struct {
	Name string
	Kind Kind

	// Next names the successor step; empty means terminal.
	Next string

	// RequiredCapability, when set, must be held by the activating actor.
	// Engine-internal chaining and validated callback resumption bypass it.
	RequiredCapability string

	// Completed is the status label applied when the step finishes.
	Completed model.Status

	// Waiting is the status label applied while a wait-for-callback step is
	// suspended.
	Waiting model.Status

	Action ActionFunc
	Ready  ReadyFunc
}

// Registry is an immutable lookup table over a validated step chain.
type Registry struct {
	steps map[string]*Definition
	order []string
	first string
}

// New builds a registry from the supplied definitions and validates that
// they form a single linked chain: exactly one start, exactly one terminal
// step, no cycles, no branching, no dangling Next references.
func New(defs ...*Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("registry requires at least one step")
	}
	steps := make(map[string]*Definition, len(defs))
	referenced := make(map[string]int, len(defs))
	var terminals []string
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("step with empty name")
		}
		if _, dup := steps[def.Name]; dup {
			return nil, fmt.Errorf("duplicate step %q", def.Name)
		}
		switch def.Kind {
		case KindHumanInput, KindAutomatic, KindWaitForCallback:
		default:
			return nil, fmt.Errorf("step %q has unknown kind %q", def.Name, def.Kind)
		}
		if def.Kind == KindWaitForCallback && def.Ready == nil {
			return nil, fmt.Errorf("wait-for-callback step %q requires a ready predicate", def.Name)
		}
		steps[def.Name] = def
		if def.Next == "" {
			terminals = append(terminals, def.Name)
		} else {
			referenced[def.Next]++
		}
	}
	if len(terminals) != 1 {
		return nil, fmt.Errorf("chain must have exactly one terminal step, got %d", len(terminals))
	}
	for next, count := range referenced {
		if _, ok := steps[next]; !ok {
			return nil, fmt.Errorf("step chain references unknown step %q", next)
		}
		if count > 1 {
			return nil, fmt.Errorf("step %q has multiple predecessors", next)
		}
	}
	var first string
	for name := range steps {
		if referenced[name] == 0 {
			if first != "" {
				return nil, fmt.Errorf("chain must have exactly one start step, found %q and %q", first, name)
			}
			first = name
		}
	}
	if first == "" {
		return nil, fmt.Errorf("step chain contains a cycle")
	}

	// Walk the chain to fix the declared order and catch cycles that are
	// reachable from the start.
	order := make([]string, 0, len(steps))
	seen := make(map[string]bool, len(steps))
	for name := first; name != ""; name = steps[name].Next {
		if seen[name] {
			return nil, fmt.Errorf("step chain contains a cycle at %q", name)
		}
		seen[name] = true
		order = append(order, name)
	}
	if len(order) != len(steps) {
		return nil, fmt.Errorf("step chain is not fully connected: %d of %d steps reachable", len(order), len(steps))
	}

	return &Registry{steps: steps, order: order, first: first}, nil
}

// Lookup returns the definition for name. Unknown names fail with
// ErrUnknownStep - they must never silently no-op.
func (r *Registry) Lookup(name string) (*Definition, error) {
	def, ok := r.steps[name]
	if !ok {
		return nil, fmt.Errorf("step %q: %w", name, ErrUnknownStep)
	}
	return def, nil
}

// First returns the start step of the chain.
func (r *Registry) First() *Definition {
	return r.steps[r.first]
}

// Names returns step names in declared chain order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of steps.
func (r *Registry) Len() int { return len(r.order) }
