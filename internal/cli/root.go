package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/cmplot/internal/config"
	"github.com/Brownie44l1/cmplot/internal/console"
	"github.com/Brownie44l1/cmplot/internal/render"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func failure(err error) error { return &exitError{code: ExitFailure, err: err} }

func usageError(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

type globalFlags struct {
	configPath string
	dpi        int
	colormap   string
	title      string
}

type app struct {
	out, errOut io.Writer
	console     *console.Console
	flags       globalFlags

	openClassifier func(config.EvaluateConfig) (classifier, error)
	listen         func(addr string, h http.Handler) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:            out,
		errOut:         errOut,
		console:        console.New(out, errOut),
		openClassifier: openONNXClassifier,
		listen:         http.ListenAndServe,
	}
}

// Execute runs cmplot with args (excluding the program name) and returns the
// process exit code.
func Execute(args []string, out, errOut io.Writer) int {
	a := newApp(out, errOut)
	return a.execute(args)
}

func (a *app) execute(args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}

	a.console.Error(err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsage
}

func (a *app) rootCommand() *cobra.Command {
	var strict bool

	root := &cobra.Command{
		Use:   "cmplot <path> [output_path]",
		Short: "Render confusion matrix CSV files as annotated heatmaps",
		Long: `Render confusion matrix CSV files as annotated heatmaps.

With a file, plots that file (optionally to output_path). With a directory,
plots every file below it whose name ends with the configured suffix
(confusion_matrix.csv by default), next to its CSV.`,
		Example: `  cmplot results/baseline/j48/confusion_matrix.csv
  cmplot results/baseline/j48/confusion_matrix.csv j48.png
  cmplot results/`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.runPlot(cmd, args, strict)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	pf.IntVar(&a.flags.dpi, "dpi", 0, "output resolution in dots per inch")
	pf.StringVar(&a.flags.colormap, "cmap", "", "colour map: Blues, Greens, Greys, Oranges, Purples, Reds (append _r to reverse)")
	pf.StringVar(&a.flags.title, "title", "", "figure title")
	root.Flags().BoolVar(&strict, "strict", false, "in directory mode, exit non-zero when any file fails")

	root.AddCommand(a.serveCommand(), a.evaluateCommand(), a.initConfigCommand())
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, required := a.flags.configPath, true
	if path == "" {
		path, required = config.DefaultFile, false
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("dpi") {
		cfg.Render.DPI = a.flags.dpi
	}
	if flags.Changed("cmap") {
		cfg.Render.Colormap = a.flags.colormap
	}
	if flags.Changed("title") {
		cfg.Render.Title = a.flags.title
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) renderer(cmd *cobra.Command) (config.Config, *render.Renderer, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, failure(err)
	}
	r, err := render.New(cfg.RenderOptions())
	if err != nil {
		return config.Config{}, nil, failure(err)
	}
	return cfg, r, nil
}

func (a *app) initConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return failure(err)
			}
			a.console.Printf("Wrote %s\n", path)
			return nil
		},
	}
}
