package instruction

import (
	"context"
	"fmt"
	"strings"

	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/pkg/block"
)

// Program is an ordered list of instructions run against one Cache.
type Program struct {
	steps []*Scalar
}

// ParseProgram parses one instruction per entry. Blank entries and entries
// starting with '#' are skipped.
func ParseProgram(lines []string) (*Program, error) {
	p := &Program{}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i+1, err)
		}
		p.steps = append(p.steps, s)
	}
	return p, nil
}

func (p *Program) Len() int { return len(p.steps) }

func (p *Program) Steps() []*Scalar {
	return append([]*Scalar(nil), p.steps...)
}

// Run dispatches every step in order. The only error is context
// cancellation between steps.
func (p *Program) Run(ctx context.Context, cache *Cache) error {
	log := logger.FromContext(ctx)
	for i, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		var scratch *block.IndexedBlock
		if s.InPlace() {
			scratch = &block.IndexedBlock{Value: block.New(0, 0, true)}
		}
		s.Process(cache, scratch)

		out, _ := cache.Get(s.Output)
		log.Debug("instruction done", "step", i+1, "instruction", s.String(), "sparse_safe", s.Op.SparseSafe(), "output_blocks", len(out))
	}
	return nil
}
