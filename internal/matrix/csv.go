package matrix

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultCorner is the top-left header cell written by WriteCSV.
const DefaultCorner = "Actual/Predicted"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the CSV file at path.
func Load(path string) (*ConfusionMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads a confusion matrix from CSV. The first record holds the column
// labels after its first cell; every later record is a row label followed by
// one number per column. path is only used in error messages.
func Parse(r io.Reader, path string) (*ConfusionMatrix, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Path: path, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, readError(path, err)
	}
	if len(header) < 2 {
		return nil, &ParseError{Path: path, Line: 1, Err: errors.New("header row names no columns")}
	}
	colLabels := header[1:]

	var rowLabels []string
	var values []float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(path, err)
		}

		rowLabels = append(rowLabels, record[0])
		for j, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				line, col := cr.FieldPos(j + 1)
				return nil, &ParseError{
					Path:   path,
					Line:   line,
					Column: col,
					Err:    fmt.Errorf("value %q for row %q is not a number", cell, record[0]),
				}
			}
			values = append(values, v)
		}
	}

	if len(rowLabels) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("need a header row and at least one data row")}
	}

	return New(rowLabels, colLabels, values)
}

func readError(path string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Path: path, Line: csvErr.Line, Column: csvErr.Column, Err: csvErr.Err}
	}
	return &IOError{Op: "read", Path: path, Err: err}
}

// WriteCSV writes m in the format Parse reads, using corner as the top-left
// cell.
func WriteCSV(w io.Writer, m *ConfusionMatrix, corner string) error {
	cw := csv.NewWriter(w)

	header := append([]string{corner}, m.ColLabels...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, m.Cols()+1)
	for i, label := range m.RowLabels {
		record[0] = label
		for j := 0; j < m.Cols(); j++ {
			record[j+1] = strconv.FormatFloat(m.At(i, j), 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes m to path, replacing any existing file.
func SaveCSV(path string, m *ConfusionMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	if err := WriteCSV(f, m, DefaultCorner); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
