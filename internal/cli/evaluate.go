package cli

import (
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/cmplot/internal/config"
	"github.com/Brownie44l1/cmplot/internal/evaluate"
	"github.com/Brownie44l1/cmplot/internal/model"
	"github.com/Brownie44l1/cmplot/internal/render"
)

type classifier interface {
	evaluate.Classifier
	Close()
}

func openONNXClassifier(cfg config.EvaluateConfig) (classifier, error) {
	s, err := model.NewServer(cfg.Model, cfg.Metadata, cfg.Library)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) evaluateCommand() *cobra.Command {
	var (
		overrides config.EvaluateConfig
		outDir    string
		name      string
		plot      bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate <dataset_dir>",
		Short: "Classify a labelled image dataset and save its confusion matrix",
		Long: `Classify every image of a labelled dataset (one directory per class) with
an ONNX model, then write <out>/<name>_confusion_matrix.csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("model") {
				cfg.Evaluate.Model = overrides.Model
			}
			if flags.Changed("metadata") {
				cfg.Evaluate.Metadata = overrides.Metadata
			}
			if flags.Changed("library") {
				cfg.Evaluate.Library = overrides.Library
			}

			c, err := a.openClassifier(cfg.Evaluate)
			if err != nil {
				return failure(err)
			}
			defer c.Close()

			res, err := evaluate.Run(args[0], c)
			if err != nil {
				return failure(err)
			}
			for _, s := range res.Skipped {
				a.console.Failed(s.Path, s.Err)
			}

			csvPath, err := evaluate.Save(res, outDir, name)
			if err != nil {
				return failure(err)
			}
			a.console.Printf("📊 Confusion matrix CSV saved: %s\n", csvPath)

			acc, err := res.Matrix.Accuracy()
			if err != nil {
				return failure(err)
			}
			a.console.Printf("Classified %d images, accuracy %.2f%%\n", res.Images, acc*100)

			if plot {
				out, err := r.Plot(render.Request{InputPath: csvPath})
				if err != nil {
					return failure(err)
				}
				a.console.Saved(out)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&overrides.Model, "model", "", "ONNX model path (overrides evaluate.model)")
	f.StringVar(&overrides.Metadata, "metadata", "", "model metadata JSON (overrides evaluate.metadata)")
	f.StringVar(&overrides.Library, "library", "", "onnxruntime shared library (overrides evaluate.library)")
	f.StringVar(&outDir, "out", "results", "directory for the confusion matrix CSV")
	f.StringVar(&name, "name", "evaluation", "experiment name used in the CSV file name")
	f.BoolVar(&plot, "plot", false, "also render the matrix next to the CSV")
	return cmd
}
