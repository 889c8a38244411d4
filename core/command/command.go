// Package command defines the parsed form of a pipeline: command descriptors
// and the per-stage holders that carry pipe and redirection flags.
package command

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Command.
type Kind int

const (
	KindGeneric Kind = iota
	KindEcho
	KindPwd
	KindJobs
	KindExport
	KindCd
	KindKill
	KindExit
	KindEOC
)

var kindNames = map[Kind]string{
	KindGeneric: "generic",
	KindEcho:    "echo",
	KindPwd:     "pwd",
	KindJobs:    "jobs",
	KindExport:  "export",
	KindCd:      "cd",
	KindKill:    "kill",
	KindExit:    "exit",
	KindEOC:     "eoc",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindGeneric, KindEcho, KindPwd, KindJobs, KindExport, KindCd, KindKill, KindExit, KindEOC}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a name produced by Kind.String back into a Kind.
func ParseKind(name string) (Kind, error) {
	for k, v := range kindNames {
		if v == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown command kind: %q", name)
}

// Command is a parsed command descriptor. Values are immutable once built.
type Command interface {
	Kind() Kind
	// String renders the command the way a user would type it.
	String() string
}

// Generic runs an external program; Args[0] is the program name.
type Generic struct {
	Args []string
}

// Echo prints its arguments.
type Echo struct {
	Args []string
}

// Pwd prints the working directory.
type Pwd struct{}

// Jobs lists background jobs.
type Jobs struct{}

// Export sets an environment variable in the shell.
type Export struct {
	Name  string
	Value string
}

// Cd changes the shell's working directory. An empty Dir means $HOME.
type Cd struct {
	Dir string
}

// Kill sends Signal to every process of job JobID.
type Kill struct {
	Signal int
	JobID  int
}

// Exit stops the shell when it is the only command of a pipeline.
type Exit struct{}

// EOC marks the end of a pipeline's stages.
type EOC struct{}

func (Generic) Kind() Kind { return KindGeneric }
func (Echo) Kind() Kind    { return KindEcho }
func (Pwd) Kind() Kind     { return KindPwd }
func (Jobs) Kind() Kind    { return KindJobs }
func (Export) Kind() Kind  { return KindExport }
func (Cd) Kind() Kind      { return KindCd }
func (Kill) Kind() Kind    { return KindKill }
func (Exit) Kind() Kind    { return KindExit }
func (EOC) Kind() Kind     { return KindEOC }

func (c Generic) String() string { return strings.Join(c.Args, " ") }
func (c Echo) String() string    { return strings.TrimSpace("echo " + strings.Join(c.Args, " ")) }
func (Pwd) String() string       { return "pwd" }
func (Jobs) String() string      { return "jobs" }
func (c Export) String() string  { return fmt.Sprintf("export %s=%s", c.Name, c.Value) }
func (c Cd) String() string      { return strings.TrimSpace("cd " + c.Dir) }
func (c Kill) String() string    { return fmt.Sprintf("kill %d %d", c.Signal, c.JobID) }
func (Exit) String() string      { return "exit" }
func (EOC) String() string       { return "" }

// Flags describe how a stage's streams are connected.
type Flags uint

const (
	PipeIn Flags = 1 << iota
	PipeOut
	RedirectIn
	RedirectOut
	RedirectAppend
	Background
)

// Has reports whether every flag in f2 is set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Holder is one stage of a pipeline.
type Holder struct {
	Cmd   Command
	Flags Flags

	// RedirectIn is the input file when RedirectIn is flagged.
	RedirectIn string
	// RedirectOut is the output file when RedirectOut is flagged; it is
	// appended to when RedirectAppend is also set and truncated otherwise.
	RedirectOut string
}

// Kind returns the kind of the held command, or KindEOC if none is held.
func (h Holder) Kind() Kind {
	if h.Cmd == nil {
		return KindEOC
	}
	return h.Cmd.Kind()
}

// Pipeline is an EOC-terminated sequence of stages executed as one job.
type Pipeline struct {
	Holders []Holder
	// Text is the command line shown in job status lines.
	Text string
}

// Stages returns the holders up to, not including, the first EOC.
func (p Pipeline) Stages() []Holder {
	for i, h := range p.Holders {
		if h.Kind() == KindEOC {
			return p.Holders[:i]
		}
	}
	return p.Holders
}

// Background reports whether the pipeline runs in the background, which is
// decided by its first holder.
func (p Pipeline) Background() bool {
	return len(p.Holders) > 0 && p.Holders[0].Flags.Has(Background)
}

// IsExit reports whether the pipeline is the exit sentinel: an Exit command
// followed directly by EOC.
func (p Pipeline) IsExit() bool {
	return len(p.Holders) >= 2 &&
		p.Holders[0].Kind() == KindExit &&
		p.Holders[1].Kind() == KindEOC
}

// DisplayText returns Text, or the stages joined with pipes if Text is empty.
func (p Pipeline) DisplayText() string {
	if p.Text != "" {
		return p.Text
	}
	var parts []string
	for _, h := range p.Stages() {
		parts = append(parts, h.Cmd.String())
	}
	text := strings.Join(parts, " | ")
	if p.Background() {
		text += " &"
	}
	return text
}

// NewPipeline links cmds with pipes and terminates them with EOC.
func NewPipeline(background bool, cmds ...Command) Pipeline {
	var out Pipeline
	for i, c := range cmds {
		h := Holder{Cmd: c}
		if i > 0 {
			h.Flags |= PipeIn
		}
		if i < len(cmds)-1 {
			h.Flags |= PipeOut
		}
		if background {
			h.Flags |= Background
		}
		out.Holders = append(out.Holders, h)
	}
	out.Holders = append(out.Holders, Holder{Cmd: EOC{}})
	return out
}
