// Package pipeline runs parsed pipelines as foreground or background jobs.
package pipeline

import (
	"fmt"
	"io"

	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/pipes"
	"go.uber.org/zap"
)

// Launcher creates the process for one stage.
type Launcher interface {
	Launch(h command.Holder, ring *pipes.Ring, job *jobs.Job) (int, error)
}

// Orchestrator builds each pipeline stage by stage and then either waits
// for it or hands it to the job registry.
type Orchestrator struct {
	launcher Launcher
	jobs     *jobs.Registry
	reaper   jobs.Reaper
	printer  *jobs.Printer
	stderr   io.Writer
	log      *zap.Logger

	stopped bool
}

// Options configure an Orchestrator. Zero fields get defaults.
type Options struct {
	// Reaper collects foreground stages, defaults to jobs.WaitReaper.
	Reaper jobs.Reaper
	// Printer writes background status lines.
	Printer *jobs.Printer
	// Stderr receives pipeline failures.
	Stderr io.Writer
	Log    *zap.Logger
}

// New creates an orchestrator that launches stages with launcher and tracks
// background jobs in registry.
func New(launcher Launcher, registry *jobs.Registry, opts Options) *Orchestrator {
	o := &Orchestrator{
		launcher: launcher,
		jobs:     registry,
		reaper:   opts.Reaper,
		printer:  opts.Printer,
		stderr:   opts.Stderr,
		log:      opts.Log,
	}
	if o.reaper == nil {
		o.reaper = jobs.WaitReaper{}
	}
	if o.stderr == nil {
		o.stderr = io.Discard
	}
	if o.printer == nil {
		o.printer = &jobs.Printer{W: io.Discard}
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// Stopped reports whether an exit pipeline has been run.
func (o *Orchestrator) Stopped() bool {
	return o.stopped
}

// Jobs returns the registry background jobs are added to.
func (o *Orchestrator) Jobs() *jobs.Registry {
	return o.jobs
}

// Run executes p.
//
// A foreground pipeline returns once every stage has exited. A background
// pipeline returns as soon as its stages exist. If a stage can't be created
// the error is reported and returned, and the stages already created are
// still waited for or registered.
func (o *Orchestrator) Run(p command.Pipeline) error {
	if p.IsExit() {
		if !o.stopped {
			o.log.Info("exit requested")
		}
		o.stopped = true
		return nil
	}

	background := p.Background()
	stages := p.Stages()
	if len(stages) == 0 {
		return nil
	}

	log := o.log.With(zap.String("cmd", p.DisplayText()))
	log.Debug("pipeline start", zap.Int("stages", len(stages)), zap.Bool("background", background))

	ring := &pipes.Ring{}
	defer ring.Close()

	job := jobs.New(p.DisplayText())
	var buildErr error
	for _, h := range stages {
		if _, err := o.launcher.Launch(h, ring, job); err != nil {
			ring.Close()
			fmt.Fprintf(o.stderr, "quash: %v\n", err)
			log.Error("pipeline build failed", zap.Int("created", job.Len()), zap.Error(err))
			buildErr = err
			break
		}
	}

	if background {
		if job.Len() > 0 {
			id := o.jobs.Enqueue(job)
			log.Info("background job started", zap.Int("job", id), zap.Ints("pids", job.PIDs()))
			o.printer.Started(id, job.FirstPID(), job.Cmd)
		}
		return buildErr
	}

	job.Wait(o.reaper, func(pid int, err error) {
		log.Warn("could not reap stage", zap.Int("pid", pid), zap.Error(err))
	})
	log.Debug("pipeline done", zap.Ints("pids", job.PIDs()), zap.Int("status", job.ExitStatus()))
	return buildErr
}

// CheckBackground reports and removes background jobs that have finished.
// It never blocks.
func (o *Orchestrator) CheckBackground() []jobs.Completion {
	done := o.jobs.PollCompleted()
	for _, c := range done {
		o.log.Info("background job complete", zap.Int("job", c.JobID), zap.Int("status", c.Status))
		o.printer.Completed(c)
	}
	return done
}

// WaitBackground blocks until every registered background job is done,
// reporting each as it completes.
func (o *Orchestrator) WaitBackground() {
	for _, snap := range o.jobs.List() {
		j, ok := o.jobs.Lookup(snap.JobID)
		if !ok {
			continue
		}
		j.Wait(o.reaper, func(pid int, err error) {
			o.log.Warn("could not reap background stage", zap.Int("pid", pid), zap.Error(err))
		})
	}
	o.CheckBackground()
}
