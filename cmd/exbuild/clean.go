// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"exbuild/internal/config"
)

var (
	cleanForce bool

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove the build directory",
		RunE:  runClean,
	}
)

func init() {
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "remove without asking")
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return buildError("load configuration", err)
	}

	if _, err := os.Stat(cfg.BuildDir); os.IsNotExist(err) {
		fmt.Println("Nothing to clean: " + cfg.BuildDir + " does not exist")
		return nil
	}

	if !cleanForce {
		fmt.Print(WarningStyle.Render("Remove ") + cfg.BuildDir + WarningStyle.Render("? [y/N]: "))
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := os.RemoveAll(cfg.BuildDir); err != nil {
		return buildError("remove build directory", err)
	}
	fmt.Println(SuccessStyle.Render("Removed ") + cfg.BuildDir)
	return nil
}
