// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"exbuild/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage exbuild configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective layered configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
		if err != nil {
			return buildError("load configuration", err)
		}
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return buildError("render configuration", err)
		}
		fmt.Print(out)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.CreateDefault()
		if err != nil {
			return buildError("create configuration", err)
		}
		fmt.Println(SuccessStyle.Render("Config file: ") + path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where the config file is looked up",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return buildError("resolve config directory", err)
		}
		fmt.Println("Search order:")
		fmt.Println("  1. " + CmdStyle.Render("--config FILE"))
		fmt.Println("  2. ./" + config.ConfigFileName)
		fmt.Println("  3. " + filepath.Join(cfgDir, config.ConfigFileName))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
