package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New(nil, []string{"a"}, nil)
	assert.Error(t, err)

	_, err = New([]string{"a", "b"}, []string{"a"}, []float64{1})
	assert.Error(t, err)
}

func TestNewCopiesInput(t *testing.T) {
	data := []float64{1, 2}
	labels := []string{"a", "b"}
	m, err := New([]string{"x"}, labels, data)
	require.NoError(t, err)

	data[0] = 99
	labels[0] = "changed"
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, "a", m.ColLabels[0])
}

func TestAccuracy(t *testing.T) {
	m, err := Zeros([]string{"a", "b"}, []string{"a", "b"})
	require.NoError(t, err)

	acc, err := m.Accuracy()
	require.NoError(t, err)
	assert.Zero(t, acc)

	m.Add(0, 0, 3)
	m.Add(1, 1, 1)
	m.Add(1, 0, 1)
	acc, err = m.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, acc, 1e-9)
}

func TestAccuracyNeedsSquareMatrix(t *testing.T) {
	m, err := Zeros([]string{"a"}, []string{"a", "b"})
	require.NoError(t, err)

	_, err = m.Accuracy()
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindParse, KindOf(&ParseError{Err: assert.AnError}))
	assert.Equal(t, KindIO, KindOf(&IOError{Op: "open", Path: "x", Err: assert.AnError}))
	assert.Equal(t, KindOther, KindOf(assert.AnError))
	assert.Equal(t, "parse", KindParse.String())
}
