package block

import "fmt"

// Indexes are the 1-based coordinates of a block within a block grid.
type Indexes struct {
	Row, Col int64
}

func (ix Indexes) String() string { return fmt.Sprintf("(%d,%d)", ix.Row, ix.Col) }

// IndexedBlock pairs a block with its grid coordinates. A nil Value marks a
// block that is intentionally absent, which is not the same as a block of
// zeros.
type IndexedBlock struct {
	Index Indexes
	Value *Block
}

// GridDims returns the number of block rows and block columns needed to cover
// a rows x cols matrix with brlen x bclen blocks.
func GridDims(rows, cols, brlen, bclen int) (int, int, error) {
	if brlen <= 0 || bclen <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, brlen, bclen)
	}
	return ceilDiv(rows, brlen), ceilDiv(cols, bclen), nil
}

// Partition cuts b into a grid of brlen x bclen blocks in row-major grid
// order. Edge blocks are smaller when the dimensions do not divide evenly.
func Partition(b *Block, brlen, bclen int) ([]*IndexedBlock, error) {
	nbr, nbc, err := GridDims(b.rows, b.cols, brlen, bclen)
	if err != nil {
		return nil, err
	}
	out := make([]*IndexedBlock, 0, nbr*nbc)
	for bi := 0; bi < nbr; bi++ {
		for bj := 0; bj < nbc; bj++ {
			rl, cl := bi*brlen, bj*bclen
			ru, cu := min(rl+brlen, b.rows), min(cl+bclen, b.cols)
			out = append(out, &IndexedBlock{
				Index: Indexes{Row: int64(bi + 1), Col: int64(bj + 1)},
				Value: Slice(b, rl, ru, cl, cu),
			})
		}
	}
	return out, nil
}

// Slice copies rows [rl, ru) and columns [cl, cu) of b into a new block with
// its representation examined.
func Slice(b *Block, rl, ru, cl, cu int) *Block {
	if rl < 0 || ru > b.rows || rl > ru || cl < 0 || cu > b.cols || cl > cu {
		panic("block: slice out of range")
	}
	out := New(ru-rl, cu-cl, true)
	b.ForEachNonZero(func(r, c int, v float64) {
		if r >= rl && r < ru && c >= cl && c < cu {
			out.allocSparse()
			out.nnz += out.srows[r-rl].set(c-cl, v)
		}
	})
	out.ExamineSparsity()
	return out
}

// Assemble places grid blocks back into a single rows x cols block. Absent
// blocks contribute zeros; every present block must match the shape its grid
// position implies.
func Assemble(rows, cols, brlen, bclen int, parts []*IndexedBlock) (*Block, error) {
	nbr, nbc, err := GridDims(rows, cols, brlen, bclen)
	if err != nil {
		return nil, err
	}
	var est int64
	seen := make(map[Indexes]struct{}, len(parts))
	for _, p := range parts {
		if p == nil || p.Value == nil {
			continue
		}
		ix := p.Index
		if ix.Row < 1 || ix.Row > int64(nbr) || ix.Col < 1 || ix.Col > int64(nbc) {
			return nil, fmt.Errorf("%w: block %s outside %dx%d grid", ErrOutOfBounds, ix, nbr, nbc)
		}
		if _, dup := seen[ix]; dup {
			return nil, fmt.Errorf("%w: duplicate block %s", ErrDimensionMismatch, ix)
		}
		seen[ix] = struct{}{}
		rl, cl := int(ix.Row-1)*brlen, int(ix.Col-1)*bclen
		wantR, wantC := min(brlen, rows-rl), min(bclen, cols-cl)
		if p.Value.rows != wantR || p.Value.cols != wantC {
			return nil, fmt.Errorf("%w: block %s is %dx%d, want %dx%d",
				ErrDimensionMismatch, ix, p.Value.rows, p.Value.cols, wantR, wantC)
		}
		est += p.Value.nnz
	}

	out := NewForEstimate(rows, cols, est)
	for _, p := range parts {
		if p == nil || p.Value == nil {
			continue
		}
		rl, cl := int(p.Index.Row-1)*brlen, int(p.Index.Col-1)*bclen
		p.Value.ForEachNonZero(func(r, c int, v float64) {
			_ = out.Set(rl+r, cl+c, v)
		})
	}
	out.ExamineSparsity()
	return out, nil
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
