package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix holds the labels and counts of one confusion matrix.
// Rows are actual classes and columns are predicted classes.
type ConfusionMatrix struct {
	RowLabels []string
	ColLabels []string
	Values    *mat.Dense
}

// New builds a matrix from labels and row-major values.
func New(rowLabels, colLabels []string, values []float64) (*ConfusionMatrix, error) {
	rows, cols := len(rowLabels), len(colLabels)
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("matrix needs at least one row and one column, got %dx%d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("expected %d values for a %dx%d matrix, got %d", rows*cols, rows, cols, len(values))
	}

	return &ConfusionMatrix{
		RowLabels: append([]string(nil), rowLabels...),
		ColLabels: append([]string(nil), colLabels...),
		Values:    mat.NewDense(rows, cols, append([]float64(nil), values...)),
	}, nil
}

// Zeros builds a matrix of the given labels with every count set to zero.
func Zeros(rowLabels, colLabels []string) (*ConfusionMatrix, error) {
	return New(rowLabels, colLabels, make([]float64, len(rowLabels)*len(colLabels)))
}

func (m *ConfusionMatrix) Rows() int {
	r, _ := m.Values.Dims()
	return r
}

func (m *ConfusionMatrix) Cols() int {
	_, c := m.Values.Dims()
	return c
}

func (m *ConfusionMatrix) At(i, j int) float64 {
	return m.Values.At(i, j)
}

// Add increments the cell at (i, j) by delta.
func (m *ConfusionMatrix) Add(i, j int, delta float64) {
	m.Values.Set(i, j, m.Values.At(i, j)+delta)
}

// Total sums every cell.
func (m *ConfusionMatrix) Total() float64 {
	return mat.Sum(m.Values)
}

// Accuracy is the fraction of counts on the diagonal. It is only defined for
// square matrices.
func (m *ConfusionMatrix) Accuracy() (float64, error) {
	if m.Rows() != m.Cols() {
		return 0, fmt.Errorf("accuracy needs a square matrix, got %dx%d", m.Rows(), m.Cols())
	}
	total := m.Total()
	if total == 0 {
		return 0, nil
	}
	return mat.Trace(m.Values) / total, nil
}
