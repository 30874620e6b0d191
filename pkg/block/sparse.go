package block

import "sort"

// sparseRow holds the non-zero cells of one row ordered by column.
type sparseRow struct {
	cols []int
	vals []float64
}

func (r *sparseRow) size() int { return len(r.cols) }

func (r *sparseRow) search(c int) (int, bool) {
	n := len(r.cols)
	if n == 0 || c > r.cols[n-1] {
		return n, false
	}
	i := sort.SearchInts(r.cols, c)
	return i, i < n && r.cols[i] == c
}

func (r *sparseRow) get(c int) float64 {
	if i, ok := r.search(c); ok {
		return r.vals[i]
	}
	return 0
}

// set writes v at column c and returns the change in stored entries
// (-1, 0 or +1). Zero values are removed, never stored.
func (r *sparseRow) set(c int, v float64) int64 {
	i, ok := r.search(c)
	switch {
	case ok && v == 0:
		r.cols = append(r.cols[:i], r.cols[i+1:]...)
		r.vals = append(r.vals[:i], r.vals[i+1:]...)
		return -1
	case ok:
		r.vals[i] = v
		return 0
	case v == 0:
		return 0
	case i == len(r.cols):
		r.cols = append(r.cols, c)
		r.vals = append(r.vals, v)
		return 1
	}
	r.cols = append(r.cols, 0)
	r.vals = append(r.vals, 0)
	copy(r.cols[i+1:], r.cols[i:])
	copy(r.vals[i+1:], r.vals[i:])
	r.cols[i] = c
	r.vals[i] = v
	return 1
}

func (r *sparseRow) reset() {
	r.cols = r.cols[:0]
	r.vals = r.vals[:0]
}
