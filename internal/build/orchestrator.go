// SPDX-License-Identifier: MPL-2.0

// Package build drives a changeset build: it owns the environment,
// sequences the staging session, and applies the change queue in
// priority order.
package build

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"exbuild/internal/changeset"
	"exbuild/internal/config"
	"exbuild/internal/staging"
)

// State is the orchestrator lifecycle position.
type State int

const (
	StateIdle State = iota
	StateConfiguring
	StateStaged
	StateRunning
	StateDraining
	StateDone
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateStaged:
		return "staged"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EmptyChangesetError is returned by Build when the queue is empty.
// Builds must do something; an empty queue is a setup mistake, not a
// trivially successful build.
type EmptyChangesetError struct {
	Dir string
}

func (e *EmptyChangesetError) Error() string {
	return fmt.Sprintf("nothing to build: no changes queued from %s", e.Dir)
}

// ConfigureOptions feeds the configuration layering pass.
type ConfigureOptions struct {
	// ConfigFilePath forces a specific config file.
	ConfigFilePath string
	// FlagBinds is the CLI flag layer (config key -> flag).
	FlagBinds map[string]*pflag.Flag
	// Overrides is the highest-precedence layer.
	Overrides map[string]any
	// Queue supplies the change queue explicitly; when nil, Configure
	// runs discovery over the changeset directory.
	Queue []*changeset.Change
}

// Orchestrator owns one build at a time. Not safe for concurrent use;
// the environment and build directory are exclusively owned by the run.
type Orchestrator struct {
	log     *log.Logger
	staging *staging.Manager

	state State
	cfg   *config.Config
	env   *changeset.Environment
	queue []*changeset.Change
}

// New creates an Orchestrator in StateIdle.
func New(logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		log:     logger,
		staging: staging.NewManager(logger),
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Environment returns the shared environment, nil before Configure.
func (o *Orchestrator) Environment() *changeset.Environment { return o.env }

// Queue returns the remaining change queue.
func (o *Orchestrator) Queue() []*changeset.Change { return o.queue }

// Configure runs configuration layering, builds the environment, and
// populates the queue (by discovery unless one was supplied). The
// orchestrator returns to StateIdle, ready to build.
func (o *Orchestrator) Configure(opts ConfigureOptions) error {
	o.state = StateConfiguring

	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: opts.ConfigFilePath,
		FlagBinds:      opts.FlagBinds,
		Overrides:      opts.Overrides,
	})
	if err != nil {
		o.state = StateFailed
		return err
	}

	if cfg.UI.Verbose {
		o.log.SetLevel(log.DebugLevel)
	}

	queue := opts.Queue
	if queue == nil {
		queue, err = changeset.Collect(cfg.ChangesetDir, cfg.ChangesetExt, o.log)
		if err != nil {
			o.state = StateFailed
			return err
		}
	}

	skip, err := changeset.ParseSkipSpec(cfg.Skip)
	if err != nil {
		o.state = StateFailed
		return &config.ConfigError{Err: err}
	}
	queue = skip.Filter(queue)

	o.cfg = cfg
	o.env = changeset.NewEnvironment(cfg, o.log)
	o.queue = queue
	o.state = StateIdle
	return nil
}

// Build applies the queued changes in order against the environment,
// staging the build directory around the run when enabled.
//
// The first failing change aborts the remaining queue. An active
// staging session is always drained: committed when the run succeeded
// or commit_on_failure is set (the default, keeping partial progress
// for resumable builds), discarded otherwise.
func (o *Orchestrator) Build(ctx context.Context) error {
	if o.cfg == nil || o.state != StateIdle {
		return fmt.Errorf("orchestrator not configured (state %s)", o.state)
	}

	if len(o.queue) == 0 {
		o.state = StateFailed
		return &EmptyChangesetError{Dir: o.cfg.ChangesetDir}
	}

	var session *staging.Session
	if o.cfg.Stage {
		var err error
		session, err = o.staging.Enter(o.cfg.BuildDir)
		if err != nil {
			o.state = StateFailed
			return err
		}
		o.state = StateStaged
		o.env.BuildDir = session.StagedDir
	}

	o.state = StateRunning
	applyErr := o.run(ctx)

	o.state = StateDraining
	if err := o.drain(session, applyErr); err != nil {
		o.state = StateFailed
		return err
	}

	if applyErr != nil {
		o.state = StateFailed
		return applyErr
	}
	o.state = StateDone
	return nil
}

// run drains the queue front-to-back, stopping at the first failure.
func (o *Orchestrator) run(ctx context.Context) error {
	total := len(o.queue)
	for i := 1; len(o.queue) > 0; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build canceled: %w", err)
		}

		chg := o.queue[0]
		o.queue = o.queue[1:]

		o.log.Infof("[%d/%d] Applying #%d %s", i, total, chg.Priority, chg.Name)
		if err := chg.Apply(ctx, o.env); err != nil {
			return err
		}
	}
	return nil
}

// drain closes the staging session. The effective build directory is
// restored to the real one either way.
func (o *Orchestrator) drain(session *staging.Session, applyErr error) error {
	if session == nil {
		return nil
	}
	o.env.BuildDir = session.OriginalDir

	if applyErr != nil && !o.cfg.CommitOnFailure {
		o.log.Warn("discarding staged work after failure", "staged", session.StagedDir)
		return o.staging.Discard(session)
	}
	if applyErr != nil {
		o.log.Warn("committing partial progress after failure", "original", session.OriginalDir)
	}
	return o.staging.Exit(session)
}
