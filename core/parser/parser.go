// Package parser turns a line of input into pipelines for the engine.
//
// Lines are parsed with a POSIX shell grammar but only a small subset is
// accepted: simple commands joined by |, separated by ; or newlines, with <,
// > and >> redirections, a trailing &, NAME=value assignments, and $NAME
// expansion inside words. Anything else is rejected rather than guessed at.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/quash/core/command"
	"mvdan.cc/sh/v3/syntax"
)

// ErrSyntax is returned for input that can't be parsed or isn't supported.
var ErrSyntax = errors.New("syntax error")

// Parser converts input lines into pipelines.
type Parser struct {
	// Lookup resolves variables during expansion.
	Lookup func(name string) string
}

// New creates a parser expanding variables with lookup.
func New(lookup func(name string) string) *Parser {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	return &Parser{Lookup: lookup}
}

// Parse converts line into the pipelines it contains, in order. A blank line
// or a comment yields no pipelines.
func (p *Parser) Parse(line string) ([]command.Pipeline, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	var out []command.Pipeline
	for _, stmt := range file.Stmts {
		pipelines, err := p.convertStmt(line, stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, pipelines...)
	}
	return out, nil
}

func (p *Parser) convertStmt(line string, stmt *syntax.Stmt) ([]command.Pipeline, error) {
	if stmt.Negated || stmt.Coprocess {
		return nil, unsupported(stmt, "operator")
	}

	var stmts []*syntax.Stmt
	if err := flattenPipe(stmt, &stmts); err != nil {
		return nil, err
	}

	var stages [][]command.Holder
	for _, s := range stmts {
		holders, err := p.convertStage(s)
		if err != nil {
			return nil, err
		}
		stages = append(stages, holders)
	}

	// A single stage may expand to several commands, e.g. A=1 B=2; each runs
	// as its own pipeline. Inside a pipe every stage must be one command.
	if len(stages) == 1 && len(stages[0]) > 1 {
		var out []command.Pipeline
		for _, h := range stages[0] {
			out = append(out, finish([]command.Holder{h}, stmt.Background, ""))
		}
		return out, nil
	}

	var holders []command.Holder
	for _, stage := range stages {
		if len(stage) != 1 {
			return nil, fmt.Errorf("%w: a pipeline stage must be a single command", ErrSyntax)
		}
		holders = append(holders, stage[0])
	}
	return []command.Pipeline{finish(holders, stmt.Background, sourceText(line, stmt))}, nil
}

// flattenPipe appends the stages of a | chain to out, leftmost first.
func flattenPipe(stmt *syntax.Stmt, out *[]*syntax.Stmt) error {
	bin, ok := stmt.Cmd.(*syntax.BinaryCmd)
	if !ok {
		*out = append(*out, stmt)
		return nil
	}
	if bin.Op != syntax.Pipe {
		return unsupported(bin, fmt.Sprintf("operator %q", bin.Op.String()))
	}
	if len(stmt.Redirs) > 0 {
		return unsupported(stmt.Redirs[0], "redirection of a whole pipeline")
	}
	if err := flattenPipe(bin.X, out); err != nil {
		return err
	}
	return flattenPipe(bin.Y, out)
}

// finish links holders with pipes, sets the background flag, and terminates
// the pipeline.
func finish(holders []command.Holder, background bool, text string) command.Pipeline {
	for i := range holders {
		if i > 0 {
			holders[i].Flags |= command.PipeIn
		}
		if i < len(holders)-1 {
			holders[i].Flags |= command.PipeOut
		}
		if background {
			holders[i].Flags |= command.Background
		}
	}
	holders = append(holders, command.Holder{Cmd: command.EOC{}})
	return command.Pipeline{Holders: holders, Text: text}
}

// sourceText returns the text of stmt as the user typed it.
func sourceText(line string, stmt *syntax.Stmt) string {
	start := stmt.Pos().Offset()
	end := stmt.Cmd.End().Offset()
	for _, r := range stmt.Redirs {
		if e := r.End().Offset(); e > end {
			end = e
		}
	}
	if start >= end || int(end) > len(line) {
		return ""
	}

	text := strings.TrimSpace(line[start:end])
	if stmt.Background {
		text += " &"
	}
	return text
}

func (p *Parser) convertStage(stmt *syntax.Stmt) ([]command.Holder, error) {
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok {
		return nil, unsupported(stmt, "command")
	}

	var holder command.Holder
	for _, r := range stmt.Redirs {
		if err := p.convertRedirect(r, &holder); err != nil {
			return nil, err
		}
	}

	cmds, err := p.convertCall(call)
	if err != nil {
		return nil, err
	}

	out := make([]command.Holder, 0, len(cmds))
	for _, c := range cmds {
		h := holder
		h.Cmd = c
		out = append(out, h)
	}
	return out, nil
}

func (p *Parser) convertRedirect(r *syntax.Redirect, h *command.Holder) error {
	fd := ""
	if r.N != nil {
		fd = r.N.Value
	}

	target, err := p.evalWord(r.Word)
	if err != nil {
		return err
	}
	if target == "" {
		return unsupported(r, "empty redirection target")
	}

	switch {
	case r.Op == syntax.RdrIn && (fd == "" || fd == "0"):
		h.Flags |= command.RedirectIn
		h.RedirectIn = target
	case (r.Op == syntax.RdrOut || r.Op == syntax.ClbOut) && (fd == "" || fd == "1"):
		h.Flags |= command.RedirectOut
		h.Flags &^= command.RedirectAppend
		h.RedirectOut = target
	case r.Op == syntax.AppOut && (fd == "" || fd == "1"):
		h.Flags |= command.RedirectOut | command.RedirectAppend
		h.RedirectOut = target
	default:
		return unsupported(r, fmt.Sprintf("redirection %s%s", fd, r.Op))
	}
	return nil
}

// convertCall turns a simple command into one or more descriptors.
func (p *Parser) convertCall(call *syntax.CallExpr) ([]command.Command, error) {
	assigns, err := p.evalAssigns(call.Assigns)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		arg, err := p.evalWord(word)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if len(args) == 0 {
		var out []command.Command
		for _, a := range assigns {
			out = append(out, a)
		}
		return out, nil
	}

	cmd, err := builtin(args)
	if err != nil {
		return nil, err
	}
	if len(assigns) == 0 {
		return cmd, nil
	}

	// Assignments scoped to one program are handed to env(1).
	if len(cmd) != 1 || cmd[0].Kind() != command.KindGeneric {
		return nil, fmt.Errorf("%w: assignments before %s aren't supported", ErrSyntax, args[0])
	}
	envArgs := []string{"env"}
	for _, a := range assigns {
		envArgs = append(envArgs, a.Name+"="+a.Value)
	}
	return []command.Command{command.Generic{Args: append(envArgs, args...)}}, nil
}

// evalAssigns evaluates NAME=value prefixes left to right; later values may
// refer to earlier names.
func (p *Parser) evalAssigns(assigns []*syntax.Assign) ([]command.Export, error) {
	var out []command.Export
	local := map[string]string{}

	saved := p.Lookup
	defer func() { p.Lookup = saved }()
	p.Lookup = func(name string) string {
		if v, ok := local[name]; ok {
			return v
		}
		return saved(name)
	}

	for _, a := range assigns {
		if a.Name == nil || a.Append || a.Naked || a.Index != nil || a.Array != nil {
			return nil, unsupported(a, "assignment")
		}
		value, err := p.evalWord(a.Value)
		if err != nil {
			return nil, err
		}
		local[a.Name.Value] = value
		out = append(out, command.Export{Name: a.Name.Value, Value: value})
	}
	return out, nil
}

func (p *Parser) evalWord(word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}
	var out []string

	for _, part := range word.Parts {
		subEval, err := p.evalWordPart(part)
		if err != nil {
			return "", err
		}
		out = append(out, subEval)
	}
	return strings.Join(out, ""), nil
}

func (p *Parser) evalWordPart(part syntax.WordPart) (string, error) {
	switch part := part.(type) {
	case *syntax.Lit:
		return part.Value, nil

	case *syntax.SglQuoted:
		return part.Value, nil

	case *syntax.DblQuoted:
		var out []string
		for _, subPart := range part.Parts {
			subEval, err := p.evalWordPart(subPart)
			if err != nil {
				return "", err
			}
			out = append(out, subEval)
		}
		return strings.Join(out, ""), nil

	case *syntax.ParamExp:
		if part.Param == nil || part.Excl || part.Length || part.Width ||
			part.Index != nil || part.Slice != nil || part.Repl != nil ||
			part.Names != 0 || part.Exp != nil {
			return "", unsupported(part, "parameter expansion")
		}
		return p.Lookup(part.Param.Value), nil

	default:
		return "", unsupported(part, "expansion")
	}
}

func unsupported(node syntax.Node, what string) error {
	return fmt.Errorf("%w: unsupported %s at column %d", ErrSyntax, what, node.Pos().Col())
}
