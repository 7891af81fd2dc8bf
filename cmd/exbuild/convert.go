// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"exbuild/internal/batch"
	"exbuild/internal/config"
	"exbuild/internal/issue"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] IMAGES...",
	Short: "Batch-convert images to AVIF",
	Long: `Batch-convert images to AVIF.

Each image is encoded next to itself with the .avif extension, running
up to --jobs encoder processes in parallel. Quality values use a
friendly 0-100 scale (higher is better) and are mapped onto the
encoder's inverted quantizer scale internally.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.IntP("jobs", "j", 0, "parallel encoder processes (0 = one per CPU)")
	f.IntP("speed", "s", 0, "encoder speed 0-10")
	f.IntP("qual", "t", 0, "target quality 0-100")
	f.Int("minqual", 0, "lower quality bound 0-100")
	f.Int("maxqual", 0, "upper quality bound 0-100")
	f.Int("sharpness", 0, "sharpness 0-7")
	f.String("encoder", "", "encoder binary name or path")
	f.String("extra", "", "extra encoder arguments, shell-quoted")
}

func convertFlagBinds(f *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"convert.jobs":          f.Lookup("jobs"),
		"convert.speed":         f.Lookup("speed"),
		"convert.qual":          f.Lookup("qual"),
		"convert.minqual":       f.Lookup("minqual"),
		"convert.maxqual":       f.Lookup("maxqual"),
		"convert.sharpness":     f.Lookup("sharpness"),
		"convert.encoder":       f.Lookup("encoder"),
		"convert.encoder_extra": f.Lookup("extra"),
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: cfgFile,
		FlagBinds:      convertFlagBinds(cmd.Flags()),
	})
	if err != nil {
		return buildError("load configuration", err)
	}

	conv, err := batch.NewAvifConverter(cfg.Convert, logger)
	if err != nil {
		return buildError("configure converter", err)
	}
	if err := conv.CheckEncoder(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			showIssue(issue.EncoderNotFoundId)
		}
		return buildError("locate encoder", err)
	}

	jobs := make([]batch.Job, 0, len(args))
	for _, src := range args {
		dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".avif"
		job, err := conv.JobFor(src, dst)
		if err != nil {
			return buildError("build encoder invocation", err)
		}
		jobs = append(jobs, job)
	}

	pool := &batch.CommandBatch{Workers: cfg.Convert.Jobs, Log: logger}
	if err := pool.Run(cmd.Context(), jobs); err != nil {
		return buildError("convert images", err)
	}

	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Converted %d image(s).", len(jobs))))
	return nil
}
