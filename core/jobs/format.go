package jobs

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Status line prefixes.
const (
	StartedPrefix   = "Background job started: "
	CompletedPrefix = "Completed: \t"
)

// FormatLine renders a job as "[ID]\tPID\tCMD\n" with the pid right aligned
// in eight columns.
func FormatLine(id, pid int, cmd string) string {
	return fmt.Sprintf("[%d]\t%8d\t%s\n", id, pid, cmd)
}

// Printer writes job status lines.
type Printer struct {
	W io.Writer
	// Color highlights the prefixes of start and completion lines.
	Color bool
}

func (p *Printer) prefix(c *color.Color, s string) string {
	if p.Color {
		return c.Sprint(s)
	}
	return s
}

var (
	startedColor   = color.New(color.FgCyan)
	completedColor = color.New(color.FgGreen, color.Bold)
)

// Started prints the background start line for a job.
func (p *Printer) Started(id, pid int, cmd string) {
	fmt.Fprint(p.W, p.prefix(startedColor, StartedPrefix)+FormatLine(id, pid, cmd))
}

// Completed prints the completion line for a job.
func (p *Printer) Completed(c Completion) {
	fmt.Fprint(p.W, p.prefix(completedColor, CompletedPrefix)+FormatLine(c.JobID, c.FirstPID, c.Cmd))
}

// Listing renders one line per job, as printed by the jobs builtin.
func Listing(snapshots []Snapshot) []string {
	out := make([]string, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, FormatLine(s.JobID, s.FirstPID, s.Cmd))
	}
	return out
}
