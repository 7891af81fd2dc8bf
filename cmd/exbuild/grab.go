// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"exbuild/internal/config"
	"exbuild/internal/fetch"
)

var (
	grabForce bool
	grabYes   bool

	grabCmd = &cobra.Command{
		Use:   "grab",
		Short: "Fetch the upstream metrics dataset",
		Long: `Fetch the upstream metrics dataset.

Downloads the raw dataset on your behalf and caches it as YAML at the
configured fetch.cache_file. An existing cache is reused unless
--force is given. The first download asks for EULA confirmation; pass
--yes to accept it explicitly.`,
		RunE: runGrab,
	}
)

func init() {
	f := grabCmd.Flags()
	f.BoolVar(&grabForce, "force", false, "re-download even when a cache exists")
	f.BoolVar(&grabYes, "yes", false, "accept the EULA without prompting")
	f.Int("limit", 0, "cap requested entries (0 = everything)")
}

func grabFlagBinds(f *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"fetch.limit": f.Lookup("limit"),
	}
}

func runGrab(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: cfgFile,
		FlagBinds:      grabFlagBinds(cmd.Flags()),
	})
	if err != nil {
		return buildError("load configuration", err)
	}

	grabber, err := fetch.NewGrabber(cfg.Fetch, newLogger())
	if err != nil {
		return buildError("prepare grabber", err)
	}

	reused, err := grabber.EnsureRaw(cmd.Context(), grabForce, grabYes)
	if err != nil {
		return buildError("fetch dataset", err)
	}
	if reused {
		fmt.Println("Existing cache reused: " + cfg.Fetch.CacheFile)
	} else {
		fmt.Println(SuccessStyle.Render("Dataset cached: ") + cfg.Fetch.CacheFile)
	}
	return nil
}
