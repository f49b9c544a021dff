// Package evaluate runs an image classifier over a labelled dataset and
// tallies its answers into a confusion matrix.
//
// The dataset holds one directory per actual class:
//
//	dataset/
//	├── happy/
//	│   ├── 0001.png
//	│   └── 0002.jpg
//	└── sad/
//	    └── 0003.png
package evaluate

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Brownie44l1/cmplot/internal/matrix"
)

type Classifier interface {
	Classes() []string
	Classify(img image.Image) (string, error)
}

// Skip records an input that did not contribute to the matrix.
type Skip struct {
	Path string
	Err  error
}

type Result struct {
	Matrix  *matrix.ConfusionMatrix
	Images  int
	Skipped []Skip
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Run classifies every image under dataset. Directories that do not name a
// model class, unreadable images and classification failures are skipped and
// listed in the result.
func Run(dataset string, c Classifier) (Result, error) {
	classes := c.Classes()
	index := make(map[string]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	cm, err := matrix.Zeros(classes, classes)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build matrix: %w", err)
	}
	res := Result{Matrix: cm}

	entries, err := os.ReadDir(dataset)
	if err != nil {
		return Result{}, &matrix.IOError{Op: "read", Path: dataset, Err: err}
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(dataset, entry.Name())
		actual, ok := index[entry.Name()]
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Path: dir, Err: fmt.Errorf("%q is not one of the model classes", entry.Name())})
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				res.Skipped = append(res.Skipped, Skip{Path: path, Err: err})
				return nil
			}
			if d.IsDir() || !imageExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			predicted, err := classifyFile(path, c)
			if err != nil {
				res.Skipped = append(res.Skipped, Skip{Path: path, Err: err})
				return nil
			}
			col, ok := index[predicted]
			if !ok {
				res.Skipped = append(res.Skipped, Skip{Path: path, Err: fmt.Errorf("classifier returned unknown class %q", predicted)})
				return nil
			}

			cm.Add(actual, col, 1)
			res.Images++
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("failed to walk %s: %w", dir, err)
		}
	}

	if res.Images == 0 {
		return res, fmt.Errorf("no images were classified in %s", dataset)
	}
	return res, nil
}

func classifyFile(path string, c Classifier) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &matrix.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	return c.Classify(img)
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// CSVPath is where the matrix for an experiment called name is stored.
func CSVPath(outDir, name string) string {
	return filepath.Join(outDir, unsafeName.ReplaceAllString(name, "_")+"_confusion_matrix.csv")
}

// Save writes the result's matrix to CSVPath(outDir, name).
func Save(res Result, outDir, name string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &matrix.IOError{Op: "create", Path: outDir, Err: err}
	}
	path := CSVPath(outDir, name)
	if err := matrix.SaveCSV(path, res.Matrix); err != nil {
		return "", err
	}
	return path, nil
}
