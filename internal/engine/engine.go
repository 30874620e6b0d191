// Package engine runs instruction programs over a matrix cut into a block
// grid. Every grid block is an independent unit of work with its own Cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/matcore/internal/instruction"
	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/pkg/block"
)

// ErrNoOutput is returned when no unit of work produced the output tag.
var ErrNoOutput = errors.New("program produced no output blocks")

const (
	DefaultInputTag  instruction.Tag = "in"
	DefaultOutputTag instruction.Tag = "out"
)

// Job describes one engine run. Zero block sizes mean a single block covering
// the whole matrix; Parallelism <= 0 means GOMAXPROCS.
type Job struct {
	InputTag    instruction.Tag
	OutputTag   instruction.Tag
	Program     *instruction.Program
	BlockRows   int
	BlockCols   int
	Parallelism int
}

func (j Job) withDefaults(rows, cols int) Job {
	if j.InputTag == "" {
		j.InputTag = DefaultInputTag
	}
	if j.OutputTag == "" {
		j.OutputTag = DefaultOutputTag
	}
	if j.BlockRows <= 0 {
		j.BlockRows = max(rows, 1)
	}
	if j.BlockCols <= 0 {
		j.BlockCols = max(cols, 1)
	}
	if j.Parallelism <= 0 {
		j.Parallelism = runtime.GOMAXPROCS(0)
	}
	return j
}

// Result is the reassembled output of a run.
type Result struct {
	RunID    string
	Block    *block.Block
	Grid     [2]int
	Produced int
	Elapsed  time.Duration
}

// Run partitions m, dispatches the program once per grid block and
// reassembles the blocks left under the output tag. When a cycle leaves more
// than one block for the same grid index, the last one registered wins.
func Run(ctx context.Context, m *block.Block, job Job) (*Result, error) {
	if job.Program == nil {
		return nil, errors.New("engine: job has no program")
	}
	job = job.withDefaults(m.Rows(), m.Cols())

	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("run", runID)
	start := time.Now()

	parts, err := block.Partition(m, job.BlockRows, job.BlockCols)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	nbr, nbc, _ := block.GridDims(m.Rows(), m.Cols(), job.BlockRows, job.BlockCols)
	log.Info("engine run started",
		"rows", m.Rows(), "cols", m.Cols(),
		"grid", fmt.Sprintf("%dx%d", nbr, nbc),
		"steps", job.Program.Len(), "parallelism", job.Parallelism)

	outputs := make([]*block.IndexedBlock, len(parts))
	g, gctx := errgroup.WithContext(logger.WithContext(ctx, log))
	g.SetLimit(job.Parallelism)
	for i, part := range parts {
		g.Go(func() error {
			out, err := runCycle(gctx, part, job)
			if err != nil {
				return fmt.Errorf("block %s: %w", part.Index, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	produced := 0
	for _, o := range outputs {
		if o != nil {
			produced++
		}
	}
	if produced == 0 && len(parts) > 0 {
		return nil, fmt.Errorf("%w: tag %q", ErrNoOutput, job.OutputTag)
	}

	res, err := block.Assemble(m.Rows(), m.Cols(), job.BlockRows, job.BlockCols, outputs)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	elapsed := time.Since(start)
	log.Info("engine run finished",
		"blocks", len(parts), "produced", produced,
		"nnz", res.NonZeros(), "sparse", res.IsSparse(), "elapsed", elapsed)

	return &Result{
		RunID:    runID,
		Block:    res,
		Grid:     [2]int{nbr, nbc},
		Produced: produced,
		Elapsed:  elapsed,
	}, nil
}

// runCycle is one dispatch cycle: the block is published under the input tag
// of a fresh cache, the program runs, and the cache is dropped.
func runCycle(ctx context.Context, part *block.IndexedBlock, job Job) (*block.IndexedBlock, error) {
	cache := instruction.NewCache()
	defer cache.Reset()

	cache.Add(job.InputTag, part)
	if err := job.Program.Run(ctx, cache); err != nil {
		return nil, err
	}

	blocks, _ := cache.Get(job.OutputTag)
	var last *block.IndexedBlock
	for _, b := range blocks {
		if b != nil && b.Value != nil && b.Index == part.Index {
			last = b
		}
	}
	logger.FromContext(ctx).Debug("block done", "block", part.Index.String(), "produced", last != nil)
	return last, nil
}
