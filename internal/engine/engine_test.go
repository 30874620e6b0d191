package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/matcore/internal/instruction"
	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/pkg/block"
)

func testCtx() context.Context {
	return logger.WithContext(context.Background(), logger.Discard())
}

func program(t *testing.T, lines ...string) *instruction.Program {
	t.Helper()
	p, err := instruction.ParseProgram(lines)
	require.NoError(t, err)
	return p
}

func matrix(t *testing.T, rows, cols int) *block.Block {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		if i%3 == 0 {
			data[i] = float64(i + 1)
		}
	}
	b, err := block.FromDense(rows, cols, data)
	require.NoError(t, err)
	return b
}

func TestRunMatchesWholeMatrixApply(t *testing.T) {
	t.Parallel()

	m := matrix(t, 7, 5)
	p := program(t, "*,in,2,t", "+,t,1,out")

	whole, err := Run(testCtx(), m, Job{Program: p})
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 1}, whole.Grid)
	assert.NotEmpty(t, whole.RunID)

	for _, size := range [][2]int{{1, 1}, {2, 3}, {3, 2}, {7, 5}, {10, 10}} {
		res, err := Run(testCtx(), m, Job{
			Program:     p,
			BlockRows:   size[0],
			BlockCols:   size[1],
			Parallelism: 3,
		})
		require.NoError(t, err, "grid %v", size)
		assert.True(t, block.Equal(whole.Block, res.Block), "grid %v", size)
	}

	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			assert.Equal(t, 2*m.Get(r, c)+1, whole.Block.Get(r, c))
		}
	}
}

func TestRunCustomTagsAndInPlace(t *testing.T) {
	t.Parallel()

	m := matrix(t, 4, 4)
	res, err := Run(testCtx(), m, Job{
		InputTag:  "x",
		OutputTag: "x",
		Program:   program(t, "*,x,3,x", "-,x,1,x"),
		BlockRows: 2,
		BlockCols: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 2}, res.Grid)
	assert.Equal(t, 4, res.Produced)
	assert.Equal(t, 3*m.Get(0, 0)-1, res.Block.Get(0, 0))
	assert.Equal(t, -1.0, res.Block.Get(0, 1))
}

func TestRunLastOutputWins(t *testing.T) {
	t.Parallel()

	m := matrix(t, 3, 3)
	res, err := Run(testCtx(), m, Job{Program: program(t, "+,in,1,out", "*,in,10,out")})
	require.NoError(t, err)
	assert.Equal(t, 10*m.Get(0, 0), res.Block.Get(0, 0))
}

func TestRunNoOutput(t *testing.T) {
	t.Parallel()

	_, err := Run(testCtx(), matrix(t, 2, 2), Job{Program: program(t, "+,missing,1,out")})
	require.ErrorIs(t, err, ErrNoOutput)

	_, err = Run(testCtx(), matrix(t, 2, 2), Job{})
	require.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(testCtx())
	cancel()
	_, err := Run(ctx, matrix(t, 4, 4), Job{Program: program(t, "+,in,1,out"), BlockRows: 1, BlockCols: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyMatrix(t *testing.T) {
	t.Parallel()

	res, err := Run(testCtx(), block.New(0, 0, true), Job{Program: program(t, "+,in,1,out")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Block.Rows())
	assert.Equal(t, 0, res.Block.Cols())
}
