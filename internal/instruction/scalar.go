// Package instruction parses scalar instructions and dispatches them against
// a per-unit-of-work Cache of indexed blocks.
package instruction

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/samcharles93/matcore/pkg/block"
	"github.com/samcharles93/matcore/pkg/operator"
)

// numFields is opcode, two operands and the output tag.
const numFields = 4

// Scalar applies a scalar operator to every block under Input and publishes
// the results under Output.
type Scalar struct {
	Op     *operator.Scalar
	Input  Tag
	Output Tag
	text   string
}

// Parse reads "opcode,arg1,arg2,out". Exactly one of arg1 and arg2 must be a
// numeric constant; the other is the input tag. Its position decides whether
// the constant is the left or right operand. Constants are finite decimal
// numbers, so names like "nan" or "inf" are tags.
func Parse(text string) (*Scalar, error) {
	parts := strings.Split(text, ",")
	if len(parts) != numFields {
		return nil, newInvalidInstruction(text, "expected %d fields, got %d", numFields, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, newInvalidInstruction(text, "field %d is empty", i+1)
		}
	}
	opcode, arg1, arg2, out := parts[0], parts[1], parts[2], parts[3]

	c1, err1 := parseConstant(arg1)
	c2, err2 := parseConstant(arg2)
	var (
		constant     float64
		input        string
		constantLeft bool
	)
	switch {
	case err1 == nil && err2 == nil:
		return nil, newInvalidInstruction(text, "both operands are constants")
	case err1 != nil && err2 != nil:
		return nil, newInvalidInstruction(text, "no constant operand")
	case err1 == nil:
		constant, input, constantLeft = c1, arg2, true
	default:
		constant, input = c2, arg1
	}
	if _, err := parseConstant(out); err == nil {
		return nil, newInvalidInstruction(text, "output %q is not a tag", out)
	}

	op, err := operator.NewScalar(opcode, constant, constantLeft)
	if err != nil {
		return nil, newInvalidInstruction(text, "%v", err)
	}
	return &Scalar{Op: op, Input: Tag(input), Output: Tag(out), text: text}, nil
}

var errNotConstant = errors.New("not a finite decimal constant")

func parseConstant(field string) (float64, error) {
	digits := strings.TrimLeft(field, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errNotConstant
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotConstant
	}
	return v, nil
}

func (s *Scalar) String() string { return s.text }

// InPlace reports whether the instruction overwrites its own input tag.
func (s *Scalar) InPlace() bool { return s.Input == s.Output }

// Process runs one dispatch step. A missing input tag is a no-op and absent
// blocks are skipped. Outputs keep the grid index of their input.
//
// For in-place instructions the first result is written into scratch (when
// given) and the input tag's list is replaced by the results once all blocks
// are done, so later steps only see the new values. Appending them instead
// would leave the stale inputs under the same tag. Otherwise each result is
// a fresh holder registered under Output.
func (s *Scalar) Process(cache *Cache, scratch *block.IndexedBlock) {
	blocks, ok := cache.Get(s.Input)
	if !ok {
		return
	}
	inPlace := s.InPlace()
	var results []*block.IndexedBlock
	for _, in := range blocks {
		if in == nil || in.Value == nil {
			continue
		}

		var out *block.IndexedBlock
		switch {
		case !inPlace:
			out = cache.HoldPlace(s.Output, in.Value.IsSparse())
		case scratch != nil:
			out, scratch = scratch, nil
			if out.Value == nil {
				out.Value = block.New(0, 0, true)
			}
		default:
			out = &block.IndexedBlock{Value: block.New(0, 0, true)}
		}

		out.Index = in.Index
		operator.Apply(in.Value, out.Value, s.Op)
		if inPlace {
			results = append(results, out)
		}
	}
	if inPlace {
		cache.Set(s.Output, results)
	}
}
