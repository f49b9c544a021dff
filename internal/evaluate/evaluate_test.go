package evaluate

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/cmplot/internal/matrix"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// colorClassifier calls every mostly red image "happy" and everything else
// "sad".
type colorClassifier struct{}

func (colorClassifier) Classes() []string { return []string{"happy", "sad"} }

func (colorClassifier) Classify(img image.Image) (string, error) {
	r, _, b, _ := img.At(0, 0).RGBA()
	if r > b {
		return "happy", nil
	}
	return "sad", nil
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRunTalliesOneCountPerImage(t *testing.T) {
	dataset := t.TempDir()
	writePNG(t, filepath.Join(dataset, "happy", "1.png"), red)
	writePNG(t, filepath.Join(dataset, "happy", "2.png"), red)
	writePNG(t, filepath.Join(dataset, "happy", "nested", "3.PNG"), blue)
	writePNG(t, filepath.Join(dataset, "sad", "4.png"), blue)
	require.NoError(t, os.WriteFile(filepath.Join(dataset, "sad", "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataset, "sad", "broken.png"), []byte("not a png"), 0o644))
	writePNG(t, filepath.Join(dataset, "surprised", "5.png"), red)

	res, err := Run(dataset, colorClassifier{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Images)
	assert.Equal(t, []string{"happy", "sad"}, res.Matrix.RowLabels)
	assert.Equal(t, 2.0, res.Matrix.At(0, 0))
	assert.Equal(t, 1.0, res.Matrix.At(0, 1))
	assert.Equal(t, 0.0, res.Matrix.At(1, 0))
	assert.Equal(t, 1.0, res.Matrix.At(1, 1))

	var skipped []string
	for _, s := range res.Skipped {
		skipped = append(skipped, s.Path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(dataset, "sad", "broken.png"),
		filepath.Join(dataset, "surprised"),
	}, skipped)

	acc, err := res.Matrix.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-9)
}

func TestRunWithoutImagesFails(t *testing.T) {
	dataset := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataset, "happy"), 0o755))

	_, err := Run(dataset, colorClassifier{})
	assert.ErrorContains(t, err, "no images")
}

func TestRunMissingDataset(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "gone"), colorClassifier{})
	assert.Equal(t, matrix.KindIO, matrix.KindOf(err))
}

func TestSaveWritesSanitisedName(t *testing.T) {
	dataset := t.TempDir()
	writePNG(t, filepath.Join(dataset, "happy", "1.png"), red)
	res, err := Run(dataset, colorClassifier{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "results", "baseline")
	path, err := Save(res, out, "fer net/v2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "fer_net_v2_confusion_matrix.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Actual/Predicted,happy,sad\nhappy,1,0\nsad,0,0\n", string(data))
}
