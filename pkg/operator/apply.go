package operator

import "github.com/samcharles93/matcore/pkg/block"

// Apply writes op(v) for every logical cell v of in into out, which is reset
// to in's shape. Cell positions are carried over unchanged.
//
// A sparse-safe operator only visits stored non-zeros. Otherwise every cell,
// including the implicit zeros of a sparse input, is materialised. The
// representation of out is decided by ExamineSparsity once the values are in.
func Apply(in, out *block.Block, op *Scalar) {
	if in == out {
		in = in.Copy()
	}
	rows, cols := in.Rows(), in.Cols()

	if op.SparseSafe() && in.IsSparse() {
		out.Reset(rows, cols, true)
		in.ForEachNonZero(func(r, c int, v float64) {
			if w := op.Apply(v); w != 0 {
				_ = out.Append(r, c, w)
			}
		})
		out.ExamineSparsity()
		return
	}

	out.Reset(rows, cols, false)
	var nnz int64
	zero := 0.0
	if !op.SparseSafe() {
		zero = op.Apply(0)
		if zero != 0 {
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					out.SetDense(r, c, zero)
				}
			}
			nnz = int64(rows) * int64(cols)
		}
	}
	in.ForEachNonZero(func(r, c int, v float64) {
		w := op.Apply(v)
		out.SetDense(r, c, w)
		switch {
		case zero == 0 && w != 0:
			nnz++
		case zero != 0 && w == 0:
			nnz--
		}
	})
	out.SetNonZeros(nnz)
	out.ExamineSparsity()
}
