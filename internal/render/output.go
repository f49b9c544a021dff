package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brownie44l1/cmplot/internal/matrix"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// FormatForPath picks the image format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (use .png, .jpg or .jpeg)", filepath.Ext(path))
	}
}

// DefaultOutputPath swaps the input's extension for .png.
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}

// Request names one CSV to plot and, optionally, where to put the image.
type Request struct {
	InputPath  string
	OutputPath string
}

func (r Request) Target() string {
	if r.OutputPath != "" {
		return r.OutputPath
	}
	return DefaultOutputPath(r.InputPath)
}

func (r *Renderer) Encode(w io.Writer, m *matrix.ConfusionMatrix, format Format) error {
	img, err := r.Draw(m)
	if err != nil {
		return err
	}
	return encode(w, img, format)
}

func encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// RenderFile writes the heatmap of m to path, replacing any existing file.
func (r *Renderer) RenderFile(m *matrix.ConfusionMatrix, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return &matrix.IOError{Op: "write", Path: path, Err: err}
	}

	img, err := r.Draw(m)
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return &matrix.IOError{Op: "create", Path: path, Err: err}
	}
	if err := encode(f, img, format); err != nil {
		f.Close()
		return &matrix.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &matrix.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Plot loads the request's CSV and writes its heatmap, returning the path of
// the image.
func (r *Renderer) Plot(req Request) (string, error) {
	m, err := matrix.Load(req.InputPath)
	if err != nil {
		return "", err
	}

	target := req.Target()
	if err := r.RenderFile(m, target); err != nil {
		return "", err
	}
	return target, nil
}
