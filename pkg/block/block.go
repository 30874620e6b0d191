// Package block implements the matrix block: a rows x cols grid of float64
// values held in one of two representations.
//
// In sparse mode only non-zero cells are stored, row by row, ordered by
// column. In dense mode every cell is stored in a flat row-major array. The
// non-zero counter is authoritative and drives ExamineSparsity, which is the
// only place the representation changes.
package block

import (
	"fmt"
	"math"
)

// Block is a dual-representation matrix block.
type Block struct {
	rows, cols int
	nnz        int64
	sparse     bool

	// srows is allocated lazily on the first sparse write.
	srows []sparseRow
	dense []float64
}

// New allocates an empty rows x cols block in the requested representation.
func New(rows, cols int, sparse bool) *Block {
	if rows < 0 || cols < 0 {
		panic("block: negative dimension")
	}
	b := &Block{rows: rows, cols: cols, sparse: sparse}
	if !sparse {
		b.dense = make([]float64, rows*cols)
	}
	return b
}

// NewForEstimate allocates a block whose representation is chosen from an
// estimated non-zero count. A negative estimate means unknown and assumes a
// fully populated block.
func NewForEstimate(rows, cols int, estNNZ int64) *Block {
	if estNNZ < 0 {
		estNNZ = int64(rows) * int64(cols)
	}
	return New(rows, cols, EvalSparseFormat(rows, cols, estNNZ))
}

// FromDense builds a block from row-major values and examines its sparsity.
func FromDense(rows, cols int, data []float64) (*Block, error) {
	if rows*cols != len(data) {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrDimensionMismatch, len(data), rows, cols)
	}
	b := New(rows, cols, false)
	copy(b.dense, data)
	b.RecomputeNonZeros()
	b.ExamineSparsity()
	return b, nil
}

func (b *Block) Rows() int       { return b.rows }
func (b *Block) Cols() int       { return b.cols }
func (b *Block) NonZeros() int64 { return b.nnz }
func (b *Block) IsSparse() bool  { return b.sparse }

// Sparsity is the fraction of cells holding a non-zero value.
func (b *Block) Sparsity() float64 {
	cells := int64(b.rows) * int64(b.cols)
	if cells == 0 {
		return 0
	}
	return float64(b.nnz) / float64(cells)
}

// InMemorySize estimates the bytes held by the current representation.
func (b *Block) InMemorySize() int64 {
	return EstimateSize(b.rows, b.cols, b.nnz, b.sparse)
}

// Append adds a value during sparse construction. Zero values are ignored.
// Appending in increasing column order per row is the fast path; other
// orders are accepted and kept sorted.
func (b *Block) Append(r, c int, v float64) error {
	if !b.sparse {
		return ErrNotSparse
	}
	if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, r, c, b.rows, b.cols)
	}
	if v == 0 {
		return nil
	}
	b.allocSparse()
	b.nnz += b.srows[r].set(c, v)
	return nil
}

// SetDense writes straight into the dense array without touching the
// non-zero counter. Bulk loaders track their own count and commit it with
// SetNonZeros once they are done.
func (b *Block) SetDense(r, c int, v float64) {
	if b.sparse {
		panic("block: SetDense on sparse block")
	}
	if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
		panic("block: index out of range")
	}
	b.dense[r*b.cols+c] = v
}

// SetNonZeros overrides the non-zero counter.
func (b *Block) SetNonZeros(n int64) { b.nnz = n }

// Get returns the value at (r, c); implicit cells read as zero.
func (b *Block) Get(r, c int) float64 {
	if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
		panic("block: index out of range")
	}
	if !b.sparse {
		return b.dense[r*b.cols+c]
	}
	if b.srows == nil {
		return 0
	}
	return b.srows[r].get(c)
}

// Set writes v at (r, c) in either representation and keeps the non-zero
// counter in step.
func (b *Block) Set(r, c int, v float64) error {
	if r < 0 || r >= b.rows || c < 0 || c >= b.cols {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, r, c, b.rows, b.cols)
	}
	if b.sparse {
		if v == 0 && b.srows == nil {
			return nil
		}
		b.allocSparse()
		b.nnz += b.srows[r].set(c, v)
		return nil
	}
	i := r*b.cols + c
	old := b.dense[i]
	b.dense[i] = v
	switch {
	case old == 0 && v != 0:
		b.nnz++
	case old != 0 && v == 0:
		b.nnz--
	}
	return nil
}

// ForEachNonZero calls fn for every stored non-zero cell in row-major order.
func (b *Block) ForEachNonZero(fn func(r, c int, v float64)) {
	if b.sparse {
		for r := range b.srows {
			row := &b.srows[r]
			for k, c := range row.cols {
				fn(r, c, row.vals[k])
			}
		}
		return
	}
	for r := 0; r < b.rows; r++ {
		base := r * b.cols
		for c, v := range b.dense[base : base+b.cols] {
			if v != 0 {
				fn(r, c, v)
			}
		}
	}
}

// RecomputeNonZeros recounts the non-zero cells, stores and returns the count.
func (b *Block) RecomputeNonZeros() int64 {
	var n int64
	if b.sparse {
		for r := range b.srows {
			n += int64(b.srows[r].size())
		}
	} else {
		for _, v := range b.dense {
			if v != 0 {
				n++
			}
		}
	}
	b.nnz = n
	return n
}

// ExamineSparsity converts the block to the representation EvalSparseFormat
// selects for its current non-zero count. Calling it again is a no-op.
func (b *Block) ExamineSparsity() {
	want := EvalSparseFormat(b.rows, b.cols, b.nnz)
	if want == b.sparse {
		return
	}
	if want {
		b.denseToSparse()
	} else {
		b.sparseToDense()
	}
}

func (b *Block) denseToSparse() {
	srows := make([]sparseRow, b.rows)
	for r := 0; r < b.rows; r++ {
		base := r * b.cols
		for c, v := range b.dense[base : base+b.cols] {
			if v != 0 {
				srows[r].cols = append(srows[r].cols, c)
				srows[r].vals = append(srows[r].vals, v)
			}
		}
	}
	b.srows = srows
	b.dense = nil
	b.sparse = true
}

func (b *Block) sparseToDense() {
	dense := make([]float64, b.rows*b.cols)
	for r := range b.srows {
		row := &b.srows[r]
		base := r * b.cols
		for k, c := range row.cols {
			dense[base+c] = row.vals[k]
		}
	}
	b.dense = dense
	b.srows = nil
	b.sparse = false
}

func (b *Block) allocSparse() {
	if b.srows == nil {
		b.srows = make([]sparseRow, b.rows)
	}
}

// Reset reshapes b to an empty rows x cols block in the requested
// representation, reusing existing buffers where they fit.
func (b *Block) Reset(rows, cols int, sparse bool) {
	if rows < 0 || cols < 0 {
		panic("block: negative dimension")
	}
	b.rows, b.cols, b.nnz, b.sparse = rows, cols, 0, sparse
	if sparse {
		b.dense = nil
		if len(b.srows) == rows {
			for r := range b.srows {
				b.srows[r].reset()
			}
		} else {
			b.srows = nil
		}
		return
	}
	b.srows = nil
	n := rows * cols
	if cap(b.dense) >= n {
		b.dense = b.dense[:n]
		clear(b.dense)
	} else {
		b.dense = make([]float64, n)
	}
}

// Copy returns a deep copy of b in the same representation.
func (b *Block) Copy() *Block {
	out := &Block{rows: b.rows, cols: b.cols, nnz: b.nnz, sparse: b.sparse}
	if b.dense != nil {
		out.dense = append([]float64(nil), b.dense...)
	}
	if b.srows != nil {
		out.srows = make([]sparseRow, len(b.srows))
		for r := range b.srows {
			out.srows[r].cols = append([]int(nil), b.srows[r].cols...)
			out.srows[r].vals = append([]float64(nil), b.srows[r].vals...)
		}
	}
	return out
}

// Equal reports whether a and b hold the same logical values, regardless of
// representation. NaN cells compare equal to NaN cells.
func Equal(a, b *Block) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	same := true
	check := func(other *Block) func(r, c int, v float64) {
		return func(r, c int, v float64) {
			if !same {
				return
			}
			w := other.Get(r, c)
			if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
				same = false
			}
		}
	}
	a.ForEachNonZero(check(b))
	b.ForEachNonZero(check(a))
	return same
}
