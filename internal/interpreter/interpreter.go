package interpreter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// Fixed outputs.
const (
	NoActiveMissionOutput = "No active mission. Please start a mission first."
	NoScenariosOutput     = "No new scenarios available yet. Complete more objectives to unlock them."
)

// Request is everything a command may read. Mission is never mutated.
type Request struct {
	Args    []string
	Mission *model.Mission
	Metrics model.Metrics
	Status  model.MissionStatus
	Random  Random
}

// Command handles one verb.
type Command interface {
	Execute(req Request) Effect
}

// CommandFunc adapts a function to Command.
type CommandFunc func(req Request) Effect

// Execute implements Command.
func (f CommandFunc) Execute(req Request) Effect { return f(req) }

// Spec describes how a command is offered and gated.
type Spec struct {
	Usage   string
	Summary string
	// Roles limits the command to these roles; empty means any role.
	Roles []model.Role
	// MaxArgs is the number of arguments tolerated after the verb.
	MaxArgs int
	// Hidden commands are omitted from help.
	Hidden bool
}

func (s Spec) allows(role model.Role) bool {
	return len(s.Roles) == 0 || slices.Contains(s.Roles, role)
}

type entry struct {
	name string
	spec Spec
	cmd  Command
}

// Interpreter dispatches commands through a registry of verbs.
type Interpreter struct {
	rnd     Random
	entries map[string]*entry
	order   []string
}

// New returns an interpreter with the built-in commands registered.
// A nil rnd never triggers alerts.
func New(rnd Random) *Interpreter {
	if rnd == nil {
		rnd = Fixed(0.99)
	}
	in := &Interpreter{
		rnd:     rnd,
		entries: make(map[string]*entry),
	}
	registerBuiltins(in)
	return in
}

// Register adds or replaces a command. Help lists commands in registration order.
func (in *Interpreter) Register(name string, spec Spec, cmd Command) {
	if _, ok := in.entries[name]; !ok {
		in.order = append(in.order, name)
	}
	in.entries[name] = &entry{name: name, spec: spec, cmd: cmd}
}

// Interpret maps raw command text to an Effect for the given mission state.
func (in *Interpreter) Interpret(raw string, mission *model.Mission, metrics model.Metrics, status model.MissionStatus) Effect {
	if mission == nil {
		return Effect{Output: NoActiveMissionOutput}
	}

	name, args := Parse(raw)
	if name == "" {
		return Effect{}
	}

	e, ok := in.entries[name]
	if !ok || len(args) > e.spec.MaxArgs || !e.spec.allows(mission.Role) {
		return notRecognized(raw)
	}

	eff := e.cmd.Execute(Request{
		Args:    args,
		Mission: mission,
		Metrics: metrics,
		Status:  status,
		Random:  in.rnd,
	})
	eff.Recognized = true
	return eff
}

// Help returns the command listing for a role.
func (in *Interpreter) Help(role model.Role) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, name := range in.order {
		e := in.entries[name]
		if e.spec.Hidden || !e.spec.allows(role) {
			continue
		}
		fmt.Fprintf(&b, "\n  %-18s %s", e.spec.Usage, e.spec.Summary)
	}
	return b.String()
}

func notRecognized(raw string) Effect {
	return Effect{
		Output: fmt.Sprintf("Command '%s' not recognized. Type 'help' for available commands.", strings.TrimSpace(raw)),
	}
}
