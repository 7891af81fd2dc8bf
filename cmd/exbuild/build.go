// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"exbuild/internal/build"
	"exbuild/internal/changeset"
	"exbuild/internal/config"
	"exbuild/internal/issue"
)

var (
	buildNoStage          bool
	buildDiscardOnFailure bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Apply the changeset to the build directory",
		Long: `Apply the changeset to the build directory.

Changes are discovered from the changeset directory, ordered by
priority, and applied against a shared environment. Unless staging is
disabled the run happens in a temporary copy of the build directory,
committed back on completion.`,
		RunE: runBuild,
	}
)

func init() {
	f := buildCmd.Flags()
	f.String("build-dir", "", "build output directory")
	f.String("changeset-dir", "", "changeset manifest directory")
	f.String("dataset-dir", "", "source dataset checkout")
	f.String("skip", "", "priorities to skip, e.g. '1,2-3,5'")
	f.BoolVar(&buildNoStage, "no-stage", false, "apply changes directly, without staging")
	f.BoolVar(&buildDiscardOnFailure, "discard-on-failure", false, "throw away staged work when a change fails")
}

// buildFlagBinds maps config keys to the build command's flags.
func buildFlagBinds(f *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"build_dir":     f.Lookup("build-dir"),
		"changeset_dir": f.Lookup("changeset-dir"),
		"dataset_dir":   f.Lookup("dataset-dir"),
		"skip":          f.Lookup("skip"),
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	if verbose {
		overrides["ui.verbose"] = true
	}
	if cmd.Flags().Changed("no-stage") {
		overrides["stage"] = !buildNoStage
	}
	if cmd.Flags().Changed("discard-on-failure") {
		overrides["commit_on_failure"] = !buildDiscardOnFailure
	}

	orch := build.New(newLogger())
	err := orch.Configure(build.ConfigureOptions{
		ConfigFilePath: cfgFile,
		FlagBinds:      buildFlagBinds(cmd.Flags()),
		Overrides:      overrides,
	})
	if err != nil {
		return buildError("configure build", err)
	}

	if err := orch.Build(cmd.Context()); err != nil {
		return buildError("run build", err)
	}

	fmt.Println(SuccessStyle.Render("Build complete."))
	return nil
}

// buildError maps known failures to their explanation cards and wraps
// the rest with operation context.
func buildError(op string, err error) error {
	switch {
	case errors.As(err, new(*config.ConfigError)):
		showIssue(issue.ConfigLoadFailedId)
	case errors.As(err, new(*changeset.DiscoveryError)):
		showIssue(issue.ChangesetDirMissingId)
	case errors.As(err, new(*build.EmptyChangesetError)):
		showIssue(issue.EmptyChangesetId)
	case errors.Is(err, changeset.ErrNotRegistered):
		showIssue(issue.ChangeNotRegisteredId)
	}

	wrapped := issue.WrapWithOperation(err, op)
	if verbose {
		// fang prints the concise message; the chain is debug detail
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error detail: ")+formatErrorForDisplay(wrapped))
	}
	return &ExitError{Code: 1, Err: wrapped}
}
