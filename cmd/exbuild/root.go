// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"exbuild/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"

	// verbose enables debug output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "exbuild",
		Short: "Exercise dataset build orchestrator",
		Long: TitleStyle.Render("exbuild") + SubtitleStyle.Render(" - exercise dataset build orchestrator") + `

exbuild assembles the exercise dataset build by applying an ordered
changeset: each change unit is compiled into the binary and enabled by
a manifest file named '<priority>_<id>.toml' in the changeset
directory. Units run in priority order against a shared environment,
staged in a temporary directory so a failed build cannot corrupt the
real build output.

` + SubtitleStyle.Render("Examples:") + `
  exbuild build             Run the full changeset
  exbuild build --skip 2-3  Run the changeset without priorities 2-3
  exbuild changes           List manifests and registered units
  exbuild config show       Show the layered configuration
  exbuild grab --yes        Fetch the upstream metrics dataset`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./exbuild.toml)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(grabCmd)
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Execute runs the CLI. Called by main.main.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// newLogger builds the CLI logger; debug level when --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "exbuild",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// formatErrorForDisplay formats an error for user display. ActionableError
// values use their Format method; verbose mode shows the full chain.
func formatErrorForDisplay(err error) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// showIssue prints the explanation card for id, best-effort: a card
// that fails to render is dropped, never a second error.
func showIssue(id issue.Id) {
	card := issue.Get(id)
	if card == nil {
		return
	}
	out, err := card.Render("auto")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, out)
}
