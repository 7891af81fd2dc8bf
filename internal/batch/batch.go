// SPDX-License-Identifier: MPL-2.0

// Package batch runs external encoder commands over many files with a
// bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/shell"
)

// Job is one invocation: a fully built argv plus a label for logging.
type Job struct {
	Label string
	Argv  []string
}

// CommandBatch executes jobs concurrently, at most Workers at a time.
// A zero Workers means one worker per CPU.
type CommandBatch struct {
	Workers int
	Log     *log.Logger
}

// Run executes all jobs. The first failing job cancels the rest; its
// error is returned with the job label and captured output attached.
func (b *CommandBatch) Run(ctx context.Context, jobs []Job) error {
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.Log.Debug("Running", "job", job.Label, "argv", strings.Join(job.Argv, " "))

			cmd := exec.CommandContext(ctx, job.Argv[0], job.Argv[1:]...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w: %s", job.Label, err, strings.TrimSpace(string(out)))
			}
			return nil
		})
	}
	return g.Wait()
}

// BuildArgv assembles an argv: the binary, flag options in sorted key
// order, extra arguments split shell-style, then positional arguments.
// Option keys shorter than two runes get a single dash.
func BuildArgv(bin string, opts map[string]string, extra string, args ...string) ([]string, error) {
	argv := []string{bin}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dash := "--"
		if len(k) < 2 {
			dash = "-"
		}
		argv = append(argv, dash+k)
		if v := opts[k]; v != "" {
			argv = append(argv, v)
		}
	}

	if extra != "" {
		fields, err := shell.Fields(extra, nil)
		if err != nil {
			return nil, fmt.Errorf("parse extra arguments %q: %w", extra, err)
		}
		argv = append(argv, fields...)
	}

	return append(argv, args...), nil
}
