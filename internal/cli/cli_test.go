package cli

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/cmplot/internal/config"
)

const smallConfig = `render:
  width_in: 5
  height_in: 4
  dpi: 100
`

const exampleCSV = ",A,B,C\nA,10,2,0\nB,1,15,3\nC,0,4,20\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, setup func(*app), args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	if setup != nil {
		setup(a)
	}
	code := a.execute(args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func smallConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmplot.yaml")
	writeFile(t, path, smallConfig)
	return path
}

func TestMissingArgumentPrintsUsage(t *testing.T) {
	res := run(t, nil)

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stdout+res.stderr, "Usage:")
}

func TestInvalidPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	res := run(t, nil, "--config", smallConfigFile(t), missing)

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: "+missing+" is not a valid file or directory")
}

func TestSingleFileDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "j48_confusion_matrix.csv")
	writeFile(t, csv, exampleCSV)

	res := run(t, nil, "--config", smallConfigFile(t), csv)

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	want := filepath.Join(dir, "j48_confusion_matrix.png")
	assert.Contains(t, res.stdout, "✓ Saved confusion matrix image: "+want)
	assert.FileExists(t, want)
}

func TestSingleFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "confusion_matrix.csv")
	writeFile(t, csv, exampleCSV)
	target := filepath.Join(dir, "out.png")

	res := run(t, nil, "--config", smallConfigFile(t), csv, target)

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, target)
	assert.NoFileExists(t, filepath.Join(dir, "confusion_matrix.png"))

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestSingleFileParseError(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "confusion_matrix.csv")
	writeFile(t, csv, ",A\nA,lots\n")

	res := run(t, nil, "--config", smallConfigFile(t), csv)

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error:")
	assert.NoFileExists(t, filepath.Join(dir, "confusion_matrix.png"))
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "confusion_matrix.csv")
	writeFile(t, csv, exampleCSV)

	res := run(t, nil, "--config", smallConfigFile(t), "--dpi", "50", "--cmap", "greens_r", csv)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	f, err := os.Open(filepath.Join(dir, "confusion_matrix.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestUnknownColormapFails(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "confusion_matrix.csv")
	writeFile(t, csv, exampleCSV)

	res := run(t, nil, "--config", smallConfigFile(t), "--cmap", "rainbow", csv)

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "rainbow")
}

func TestDirectoryWithoutMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.csv"), exampleCSV)

	res := run(t, nil, "--config", smallConfigFile(t), dir)

	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "No confusion matrix CSV files found in "+dir)
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDirectoryContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "a", "j48_confusion_matrix.csv")
	bad := filepath.Join(dir, "b", "rf_confusion_matrix.csv")
	good2 := filepath.Join(dir, "c", "nb_confusion_matrix.csv")
	writeFile(t, good1, exampleCSV)
	writeFile(t, bad, ",A\nA,x\n")
	writeFile(t, good2, exampleCSV)
	cfgPath := smallConfigFile(t)

	res := run(t, nil, "--config", cfgPath, dir)

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Found 3 confusion matrix file(s)")
	assert.Contains(t, res.stdout, "Rendered 2, failed 1")
	assert.Equal(t, 1, strings.Count(res.stderr, "✗ Error processing"))
	assert.Contains(t, res.stderr, bad)
	assert.FileExists(t, filepath.Join(dir, "a", "j48_confusion_matrix.png"))
	assert.FileExists(t, filepath.Join(dir, "c", "nb_confusion_matrix.png"))
	assert.NoFileExists(t, filepath.Join(dir, "b", "rf_confusion_matrix.png"))

	strict := run(t, nil, "--config", cfgPath, "--strict", dir)
	assert.Equal(t, ExitFailure, strict.code)
	assert.Contains(t, strict.stderr, "1 of 3 files failed")
}

func TestDirectoryRejectsOutputPath(t *testing.T) {
	dir := t.TempDir()

	res := run(t, nil, "--config", smallConfigFile(t), dir, "out.png")

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "is a directory")
}

func TestInitConfig(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "cmplot.yaml")

	res := run(t, nil, "init-config", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	again := run(t, nil, "init-config", path)
	assert.Equal(t, ExitFailure, again.code)
	assert.Contains(t, again.stderr, "already exists")
}

func TestServeListensOnConfiguredAddr(t *testing.T) {
	t.Setenv("PORT", "")
	var gotAddr string
	setup := func(a *app) {
		a.listen = func(addr string, h http.Handler) error {
			gotAddr = addr
			require.NotNil(t, h)
			return errors.New("stopped")
		}
	}

	res := run(t, setup, "--config", smallConfigFile(t), "serve", "--addr", "127.0.0.1:9999")

	assert.Equal(t, "127.0.0.1:9999", gotAddr)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "stopped")
}

func TestRenderURL(t *testing.T) {
	for addr, want := range map[string]string{
		":8080":          "http://localhost:8080/render",
		"0.0.0.0:9000":   "http://localhost:9000/render",
		"[::]:9000":      "http://localhost:9000/render",
		"127.0.0.1:9999": "http://127.0.0.1:9999/render",
		"cm.local:80":    "http://cm.local:80/render",
		"[::1]:8080":     "http://[::1]:8080/render",
	} {
		assert.Equal(t, want, renderURL(addr), addr)
	}
}

// constClassifier answers "happy" for every image.
type constClassifier struct{ closed bool }

func (c *constClassifier) Classes() []string { return []string{"happy", "sad"} }

func (c *constClassifier) Classify(image.Image) (string, error) { return "happy", nil }

func (c *constClassifier) Close() { c.closed = true }

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestEvaluateWritesMatrixAndPlot(t *testing.T) {
	dataset := t.TempDir()
	writePNG(t, filepath.Join(dataset, "happy", "1.png"))
	writePNG(t, filepath.Join(dataset, "sad", "2.png"))
	outDir := filepath.Join(t.TempDir(), "results")

	fake := &constClassifier{}
	var gotCfg config.EvaluateConfig
	setup := func(a *app) {
		a.openClassifier = func(cfg config.EvaluateConfig) (classifier, error) {
			gotCfg = cfg
			return fake, nil
		}
	}

	res := run(t, setup, "--config", smallConfigFile(t), "evaluate", dataset,
		"--model", "m.onnx", "--out", outDir, "--name", "fer", "--plot")

	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "m.onnx", gotCfg.Model)
	assert.Equal(t, "models/model_metadata.json", gotCfg.Metadata)
	assert.True(t, fake.closed)

	csvPath := filepath.Join(outDir, "fer_confusion_matrix.csv")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "Actual/Predicted,happy,sad\nhappy,1,0\nsad,1,0\n", string(data))
	assert.Contains(t, res.stdout, "accuracy 50.00%")
	assert.FileExists(t, filepath.Join(outDir, "fer_confusion_matrix.png"))
}

func TestEvaluateModelLoadFailure(t *testing.T) {
	setup := func(a *app) {
		a.openClassifier = func(config.EvaluateConfig) (classifier, error) {
			return nil, errors.New("failed to load metadata")
		}
	}

	res := run(t, setup, "--config", smallConfigFile(t), "evaluate", t.TempDir())

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "failed to load metadata")
}
