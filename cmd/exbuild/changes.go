// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"exbuild/internal/changeset"
	"exbuild/internal/config"
	"exbuild/internal/issue"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List discovered change manifests and their units",
	Long: `List discovered change manifests and their units.

Shows every manifest in the changeset directory in apply order,
whether a compiled-in unit is registered for it, and whether the skip
list would exclude it.`,
	RunE: runChanges,
}

func runChanges(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return buildError("load configuration", err)
	}

	queue, err := changeset.Collect(cfg.ChangesetDir, cfg.ChangesetExt, logger)
	if err != nil {
		return buildError("collect changeset", err)
	}
	if len(queue) == 0 {
		showIssue(issue.EmptyChangesetId)
		return nil
	}

	skip, err := changeset.ParseSkipSpec(cfg.Skip)
	if err != nil {
		return buildError("parse skip list", err)
	}

	fmt.Println(renderChangesTable(queue, skip))
	return nil
}

// renderChangesTable renders the queue as a styled markdown table,
// falling back to the raw markdown if the terminal renderer fails.
func renderChangesTable(queue []*changeset.Change, skip changeset.SkipSet) string {
	var md strings.Builder
	md.WriteString("| Priority | ID | Name | Unit | Skipped |\n")
	md.WriteString("|---|---|---|---|---|\n")
	for _, chg := range queue {
		unit := "registered"
		if !changeset.IsRegistered(chg.ID) {
			unit = "**missing**"
		}
		skipped := ""
		if skip.Contains(chg.Priority) {
			skipped = "yes"
		}
		fmt.Fprintf(&md, "| %d | %s | %s | %s | %s |\n",
			chg.Priority, chg.ID, chg.Name, unit, skipped)
	}

	out, err := glamour.Render(md.String(), "auto")
	if err != nil {
		return md.String()
	}
	return out
}
