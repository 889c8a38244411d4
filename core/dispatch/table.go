// Package dispatch maps each command kind to the handler that runs in a new
// process and the handler that runs in the controlling process.
package dispatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/josephlewis42/quash/commands"
	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/vos"
)

// ErrUnknownKind is returned for a kind missing from the table.
var ErrUnknownKind = errors.New("unknown command type")

// Runtime is the controlling-process state handlers may use.
type Runtime struct {
	Env  vos.VEnv
	Jobs *jobs.Registry
}

// Entry holds the handlers of one command kind. Either side may be nil.
type Entry struct {
	// Encode renders the argument vector, command name first, that the new
	// process hands to Child. It runs in the controlling process just before
	// the new process is created. Required when Child is set.
	Encode func(rt *Runtime, cmd command.Command) []string
	// Child runs in the new process.
	Child commands.ChildFunc
	// Parent runs in the controlling process after the new process exists.
	Parent func(rt *Runtime, cmd command.Command) error
}

// Table is an exhaustive mapping from command kind to Entry.
type Table struct {
	entries map[command.Kind]Entry
}

// NewTable builds a table from entries. It panics if any kind returned by
// command.Kinds is missing, or if a Child handler has no Encode.
func NewTable(entries map[command.Kind]Entry) *Table {
	for _, k := range command.Kinds() {
		e, ok := entries[k]
		if !ok {
			panic(fmt.Sprintf("dispatch: no entry for command kind %q", k))
		}
		if e.Child != nil && e.Encode == nil {
			panic(fmt.Sprintf("dispatch: command kind %q has a child handler but no encoder", k))
		}
	}

	copied := make(map[command.Kind]Entry, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Table{entries: copied}
}

// Lookup returns the entry for kind.
func (t *Table) Lookup(kind command.Kind) (Entry, error) {
	e, ok := t.entries[kind]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return e, nil
}

// Kinds returns the kinds in the table, sorted.
func (t *Table) Kinds() []command.Kind {
	var out []command.Kind
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Encode returns the argument vector for the new process running cmd, or
// nil if the kind does nothing there.
func (t *Table) Encode(rt *Runtime, cmd command.Command) ([]string, error) {
	e, err := t.Lookup(cmd.Kind())
	if err != nil {
		return nil, err
	}
	if e.Child == nil {
		return nil, nil
	}
	return e.Encode(rt, cmd), nil
}

// RunChild runs the new-process handler of kind and returns the exit status.
// Kinds without one exit successfully.
func (t *Table) RunChild(proc vos.VOS, kind command.Kind, args []string) int {
	e, err := t.Lookup(kind)
	if err != nil {
		fmt.Fprintf(proc.Stderr(), "Unknown command type: %d\n", int(kind))
		return 1
	}
	if e.Child == nil {
		return 0
	}
	return e.Child(proc, args)
}

// RunParent runs the controlling-process handler for cmd, if any. Unknown
// kinds are reported by the new process, RunParent only returns the error.
func (t *Table) RunParent(rt *Runtime, cmd command.Command) error {
	e, err := t.Lookup(cmd.Kind())
	if err != nil {
		return err
	}
	if e.Parent == nil {
		return nil
	}
	return e.Parent(rt, cmd)
}

// Sides describes where a kind does its work, for display.
func (t *Table) Sides(kind command.Kind) string {
	e, err := t.Lookup(kind)
	switch {
	case err != nil:
		return "unknown"
	case e.Child != nil && e.Parent != nil:
		return "new process, shell"
	case e.Child != nil:
		return "new process"
	case e.Parent != nil:
		return "shell"
	default:
		return "none"
	}
}
