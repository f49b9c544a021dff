// Package scan finds confusion matrix CSVs under a directory and plots each
// one, carrying on past files that fail.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Brownie44l1/cmplot/internal/render"
)

// Find returns every non-directory entry under root whose name ends with
// suffix, in lexical walk order. Subdirectories that cannot be read are
// skipped.
func Find(root, suffix string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return matches, nil
}

type Plotter interface {
	Plot(req render.Request) (string, error)
}

// Reporter receives progress as a batch runs.
type Reporter interface {
	Found(n int)
	NoneFound(root string)
	Saved(path string)
	Failed(path string, err error)
}

type Failure struct {
	Path string
	Err  error
}

type Summary struct {
	Root     string
	Found    int
	Rendered []string
	Failures []Failure
}

type Batch struct {
	Suffix   string
	Plotter  Plotter
	Reporter Reporter
}

// Run plots every match under root. Per-file failures are collected in the
// summary; the returned error is only set when root itself cannot be walked.
func (b *Batch) Run(root string) (Summary, error) {
	rep := b.Reporter
	if rep == nil {
		rep = nopReporter{}
	}

	files, err := Find(root, b.Suffix)
	if err != nil {
		return Summary{Root: root}, err
	}

	sum := Summary{Root: root, Found: len(files)}
	if len(files) == 0 {
		rep.NoneFound(root)
		return sum, nil
	}
	rep.Found(len(files))

	for _, path := range files {
		out, err := b.Plotter.Plot(render.Request{InputPath: path})
		if err != nil {
			sum.Failures = append(sum.Failures, Failure{Path: path, Err: err})
			rep.Failed(path, err)
			continue
		}
		sum.Rendered = append(sum.Rendered, out)
		rep.Saved(out)
	}
	return sum, nil
}

type nopReporter struct{}

func (nopReporter) Found(int) {}
func (nopReporter) NoneFound(string) {}
func (nopReporter) Saved(string) {}
func (nopReporter) Failed(string, error) {}
