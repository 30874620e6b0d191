// Package operator provides scalar operators and their cellwise application
// to matrix blocks.
package operator

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownOpcode = errors.New("operator: unknown opcode")

// BinaryFn is the function behind an opcode.
type BinaryFn func(a, b float64) float64

var binaryFns = map[string]BinaryFn{
	"+":   func(a, b float64) float64 { return a + b },
	"-":   func(a, b float64) float64 { return a - b },
	"*":   func(a, b float64) float64 { return a * b },
	"/":   func(a, b float64) float64 { return a / b },
	"%%":  modulus,
	"%/%": func(a, b float64) float64 { return math.Floor(a / b) },
	"^":   math.Pow,
	"min": math.Min,
	"max": math.Max,
	"log": func(a, b float64) float64 { return math.Log(a) / math.Log(b) },
	"==":  func(a, b float64) float64 { return boolToFloat(a == b) },
	"!=":  func(a, b float64) float64 { return boolToFloat(a != b) },
	"<":   func(a, b float64) float64 { return boolToFloat(a < b) },
	"<=":  func(a, b float64) float64 { return boolToFloat(a <= b) },
	">":   func(a, b float64) float64 { return boolToFloat(a > b) },
	">=":  func(a, b float64) float64 { return boolToFloat(a >= b) },
	"&&":  func(a, b float64) float64 { return boolToFloat(a != 0 && b != 0) },
	"||":  func(a, b float64) float64 { return boolToFloat(a != 0 || b != 0) },

	// shorthands that ignore the constant
	"^2": func(a, _ float64) float64 { return a * a },
	"*2": func(a, _ float64) float64 { return a + a },
}

// Opcodes lists the supported opcodes in sorted order.
func Opcodes() []string {
	out := make([]string, 0, len(binaryFns))
	for op := range binaryFns {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// Scalar is a binary function with one operand bound to a constant.
//
// Sparse safety (op(0) == 0) depends on the constant, so it is cached and
// recomputed whenever the constant changes.
type Scalar struct {
	opcode       string
	fn           BinaryFn
	constant     float64
	constantLeft bool
	sparseSafe   bool
}

// NewScalar builds the operator for opcode. With constantLeft the constant is
// the left operand (c op v), otherwise the right one (v op c).
func NewScalar(opcode string, constant float64, constantLeft bool) (*Scalar, error) {
	fn, ok := binaryFns[opcode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOpcode, opcode)
	}
	if opcode == "^2" || opcode == "*2" {
		constantLeft = false
	}
	s := &Scalar{opcode: opcode, fn: fn, constantLeft: constantLeft}
	s.SetConstant(constant)
	return s, nil
}

// Compose returns an operator computing g(f(v)).
func Compose(f, g *Scalar) *Scalar {
	s := &Scalar{
		opcode: f.opcode + ";" + g.opcode,
		fn:     func(v, _ float64) float64 { return g.Apply(f.Apply(v)) },
	}
	s.SetConstant(0)
	return s
}

func (s *Scalar) Opcode() string     { return s.opcode }
func (s *Scalar) Constant() float64  { return s.constant }
func (s *Scalar) ConstantLeft() bool { return s.constantLeft }
func (s *Scalar) SparseSafe() bool   { return s.sparseSafe }

// SetConstant rebinds the constant and re-evaluates sparse safety.
func (s *Scalar) SetConstant(c float64) {
	s.constant = c
	s.sparseSafe = s.Apply(0) == 0
}

// Apply evaluates the operator for one runtime value.
func (s *Scalar) Apply(v float64) float64 {
	if s.constantLeft {
		return s.fn(s.constant, v)
	}
	return s.fn(v, s.constant)
}

func (s *Scalar) String() string {
	if s.constantLeft {
		return fmt.Sprintf("%g %s v", s.constant, s.opcode)
	}
	return fmt.Sprintf("v %s %g", s.opcode, s.constant)
}

func modulus(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a - math.Floor(a/b)*b
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
