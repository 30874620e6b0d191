package block

// SparsityTurnPoint is the density below which a block with more than one
// column is kept in sparse representation.
const SparsityTurnPoint = 0.4

// EvalSparseFormat reports whether a rows x cols block holding nnz non-zero
// values should use the sparse representation. Single-column blocks are always
// dense; blocks without cells are always sparse.
func EvalSparseFormat(rows, cols int, nnz int64) bool {
	cells := int64(rows) * int64(cols)
	if cells == 0 {
		return true
	}
	if cols <= 1 {
		return false
	}
	return float64(nnz)/float64(cells) < SparsityTurnPoint
}

// EstimateSize returns the approximate in-memory footprint in bytes of a block
// with the given shape, non-zero count and representation.
func EstimateSize(rows, cols int, nnz int64, sparse bool) int64 {
	const header = 64
	if sparse {
		// per row: two slice headers; per value: int column index + float64
		return header + int64(rows)*48 + nnz*16
	}
	return header + int64(rows)*int64(cols)*8
}
