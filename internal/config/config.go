// Package config loads cmplot settings from a YAML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/cmplot/internal/render"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "cmplot.yaml"

// DefaultConfigYAML documents every setting with its default value.
const DefaultConfigYAML = `# cmplot configuration
render:
  width_in: 10
  height_in: 8
  dpi: 300
  colormap: Blues
  title: Confusion Matrix
  x_label: Predicted Class
  y_label: Actual Class
  colorbar_label: Count
  annotate: true

scan:
  # Batch mode plots every file whose name ends with this suffix.
  suffix: confusion_matrix.csv

server:
  addr: ":8080"
  max_upload_mb: 10

evaluate:
  model: models/model_embedded.onnx
  metadata: models/model_metadata.json
  # Path to the onnxruntime shared library; empty uses the platform default.
  library: ""
`

type RenderConfig struct {
	WidthIn       float64 `yaml:"width_in"`
	HeightIn      float64 `yaml:"height_in"`
	DPI           int     `yaml:"dpi"`
	Colormap      string  `yaml:"colormap"`
	Title         string  `yaml:"title"`
	XLabel        string  `yaml:"x_label"`
	YLabel        string  `yaml:"y_label"`
	ColorbarLabel string  `yaml:"colorbar_label"`
	Annotate      bool    `yaml:"annotate"`
}

type ScanConfig struct {
	Suffix string `yaml:"suffix"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type EvaluateConfig struct {
	Model    string `yaml:"model"`
	Metadata string `yaml:"metadata"`
	Library  string `yaml:"library"`
}

// Config models cmplot.yaml.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Scan     ScanConfig     `yaml:"scan"`
	Server   ServerConfig   `yaml:"server"`
	Evaluate EvaluateConfig `yaml:"evaluate"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(DefaultConfigYAML), &cfg); err != nil {
		panic(fmt.Sprintf("config: default yaml is invalid: %v", err))
	}
	return cfg
}

// Load reads path over the defaults. When required is false a missing file
// is not an error and the defaults are returned. PORT, when set, overrides
// the server address.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Scan.Suffix) == "" {
		return errors.New("scan.suffix is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if _, err := render.New(c.RenderOptions()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// RenderOptions converts the render section for the heatmap renderer.
func (c Config) RenderOptions() render.Options {
	return render.Options{
		WidthIn:       c.Render.WidthIn,
		HeightIn:      c.Render.HeightIn,
		DPI:           c.Render.DPI,
		Colormap:      c.Render.Colormap,
		Title:         c.Render.Title,
		XLabel:        c.Render.XLabel,
		YLabel:        c.Render.YLabel,
		ColorbarLabel: c.Render.ColorbarLabel,
		Annotate:      c.Render.Annotate,
	}
}

// WriteDefault writes DefaultConfigYAML to path unless a file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
