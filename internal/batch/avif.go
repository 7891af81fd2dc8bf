// SPDX-License-Identifier: MPL-2.0

package batch

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"exbuild/internal/config"
)

// AvifConverter batch-converts exercise images to AVIF with avifenc.
type AvifConverter struct {
	cfg config.ConvertConfig
	log *log.Logger
}

// NewAvifConverter validates the encoder settings. Speed must lie in
// 0-10, sharpness in 0-7, quality values in 0-100 with min <= max.
func NewAvifConverter(cfg config.ConvertConfig, logger *log.Logger) (*AvifConverter, error) {
	if cfg.Speed < 0 || cfg.Speed > 10 {
		return nil, fmt.Errorf("speed %d out of range 0-10", cfg.Speed)
	}
	if cfg.Sharpness < 0 || cfg.Sharpness > 7 {
		return nil, fmt.Errorf("sharpness %d out of range 0-7", cfg.Sharpness)
	}
	for _, q := range []int{cfg.Qual, cfg.MinQual, cfg.MaxQual} {
		if q < 0 || q > 100 {
			return nil, fmt.Errorf("quality %d out of range 0-100", q)
		}
	}
	if cfg.MinQual > cfg.MaxQual {
		return nil, fmt.Errorf("minqual %d exceeds maxqual %d", cfg.MinQual, cfg.MaxQual)
	}
	return &AvifConverter{cfg: cfg, log: logger}, nil
}

// Qual2Q maps the friendly 0-100 quality scale (higher is better) onto
// avifenc's 0-63 quantizer scale (lower is better).
func Qual2Q(qual int) int {
	return int(math.Round(float64(100-qual) * 63.0 / 100.0))
}

// CheckEncoder verifies the encoder binary is resolvable.
func (c *AvifConverter) CheckEncoder() error {
	if _, err := exec.LookPath(c.cfg.Encoder); err != nil {
		return fmt.Errorf("encoder %q not found: %w", c.cfg.Encoder, err)
	}
	return nil
}

// JobFor builds the encoder invocation for one source image.
func (c *AvifConverter) JobFor(src, dst string) (Job, error) {
	opts := map[string]string{
		"speed":     strconv.Itoa(c.cfg.Speed),
		"q":         strconv.Itoa(Qual2Q(c.cfg.Qual)),
		"min":       strconv.Itoa(Qual2Q(c.cfg.MaxQual)),
		"max":       strconv.Itoa(Qual2Q(c.cfg.MinQual)),
		"sharpness": strconv.Itoa(c.cfg.Sharpness),
		"jobs":      "1",
	}
	argv, err := BuildArgv(c.cfg.Encoder, opts, c.cfg.EncoderExtra, src, dst)
	if err != nil {
		return Job{}, err
	}
	return Job{Label: filepath.Base(src), Argv: argv}, nil
}

// ConvertTree converts every image under srcDir into dstDir, keeping
// the relative layout and swapping extensions for .avif. Existing
// outputs are skipped so a rerun only fills gaps.
func (c *AvifConverter) ConvertTree(ctx context.Context, srcDir, dstDir string) error {
	if err := c.CheckEncoder(); err != nil {
		return err
	}

	var jobs []Job
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isImage(path) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, swapExt(rel, ".avif"))
		if fileExists(dst) {
			c.log.Debug("Skipping converted image", "file", rel)
			return nil
		}
		if err := ensureParent(dst); err != nil {
			return err
		}

		job, err := c.JobFor(path, dst)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", srcDir, err)
	}

	if len(jobs) == 0 {
		c.log.Info("No images to convert")
		return nil
	}
	c.log.Info("Converting images", "count", len(jobs), "jobs", c.cfg.Jobs)

	pool := &CommandBatch{Workers: c.cfg.Jobs, Log: c.log}
	return pool.Run(ctx, jobs)
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
