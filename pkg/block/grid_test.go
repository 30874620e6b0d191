package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqBlock(t *testing.T, rows, cols int) *Block {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		if i%3 != 0 {
			data[i] = float64(i)
		}
	}
	b, err := FromDense(rows, cols, data)
	require.NoError(t, err)
	return b
}

func TestPartitionShapesAndOrder(t *testing.T) {
	t.Parallel()

	b := seqBlock(t, 5, 7)
	parts, err := Partition(b, 2, 3)
	require.NoError(t, err)
	require.Len(t, parts, 9)

	assert.Equal(t, Indexes{Row: 1, Col: 1}, parts[0].Index)
	assert.Equal(t, Indexes{Row: 1, Col: 2}, parts[1].Index)
	assert.Equal(t, Indexes{Row: 3, Col: 3}, parts[8].Index)

	last := parts[8].Value
	assert.Equal(t, 1, last.Rows())
	assert.Equal(t, 1, last.Cols())
	assert.Equal(t, b.Get(4, 6), last.Get(0, 0))

	var total int64
	for _, p := range parts {
		assert.Equal(t, p.Value.NonZeros(), p.Value.RecomputeNonZeros())
		total += p.Value.NonZeros()
	}
	assert.Equal(t, b.NonZeros(), total)
}

func TestAssembleRoundTrip(t *testing.T) {
	t.Parallel()

	b := seqBlock(t, 6, 4)
	parts, err := Partition(b, 4, 3)
	require.NoError(t, err)

	got, err := Assemble(6, 4, 4, 3, parts)
	require.NoError(t, err)
	assert.True(t, Equal(b, got))
	assert.Equal(t, b.NonZeros(), got.NonZeros())
	assert.Equal(t, EvalSparseFormat(6, 4, got.NonZeros()), got.IsSparse())
}

func TestAssembleAbsentBlocksAreZero(t *testing.T) {
	t.Parallel()

	b := seqBlock(t, 4, 4)
	parts, err := Partition(b, 2, 2)
	require.NoError(t, err)
	parts[0].Value = nil
	parts[3] = nil

	got, err := Assemble(4, 4, 2, 2, parts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Get(0, 1))
	assert.Equal(t, 0.0, got.Get(3, 3))
	assert.Equal(t, b.Get(0, 2), got.Get(0, 2))
}

func TestAssembleRejectsBadParts(t *testing.T) {
	t.Parallel()

	_, err := Assemble(4, 4, 2, 2, []*IndexedBlock{{Index: Indexes{Row: 3, Col: 1}, Value: New(2, 2, true)}})
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = Assemble(4, 4, 2, 2, []*IndexedBlock{{Index: Indexes{Row: 1, Col: 1}, Value: New(1, 2, true)}})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	dup := []*IndexedBlock{
		{Index: Indexes{Row: 1, Col: 1}, Value: New(2, 2, true)},
		{Index: Indexes{Row: 1, Col: 1}, Value: New(2, 2, true)},
	}
	_, err = Assemble(4, 4, 2, 2, dup)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Partition(New(2, 2, true), 0, 2)
	require.ErrorIs(t, err, ErrInvalidGrid)
}

func TestSliceOutOfRangePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Slice(New(2, 2, true), 0, 3, 0, 1) })
	assert.Equal(t, "(2,5)", Indexes{Row: 2, Col: 5}.String())
}
