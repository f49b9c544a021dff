package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/cmplot/internal/render"
	"github.com/Brownie44l1/cmplot/internal/scan"
)

func (a *app) runPlot(cmd *cobra.Command, args []string, strict bool) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil || (!info.Mode().IsRegular() && !info.IsDir()) {
		return failure(fmt.Errorf("%s is not a valid file or directory", path))
	}

	if info.IsDir() && len(args) > 1 {
		return usageError("output_path is only accepted for a single file, %s is a directory", path)
	}

	cfg, r, err := a.renderer(cmd)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		req := render.Request{InputPath: path}
		if len(args) > 1 {
			req.OutputPath = args[1]
		}
		out, err := r.Plot(req)
		if err != nil {
			return failure(err)
		}
		a.console.Saved(out)
		return nil
	}

	batch := &scan.Batch{Suffix: cfg.Scan.Suffix, Plotter: r, Reporter: a.console}
	sum, err := batch.Run(path)
	if err != nil {
		return failure(err)
	}
	if sum.Found > 0 {
		a.console.Summary(len(sum.Rendered), len(sum.Failures))
	}
	if strict && len(sum.Failures) > 0 {
		return failure(fmt.Errorf("%d of %d files failed", len(sum.Failures), sum.Found))
	}
	return nil
}
