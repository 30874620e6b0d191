// Package csvio reads and writes matrix blocks as delimited text.
//
// Reading is two-pass when dimensions are unknown: the first pass counts
// rows and columns, the second allocates and populates the block. Both passes
// walk the same Sources in the same order.
package csvio

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/samcharles93/matcore/pkg/block"
)

// Reader turns delimited text streams into a matrix block.
type Reader struct {
	props Properties
}

func NewReader(props Properties) (*Reader, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}
	return &Reader{props: props}, nil
}

func (r *Reader) Properties() Properties { return r.props }

// Read resolves name inside fsys and returns the fully populated block with an
// authoritative non-zero count and examined representation. No partial block
// is returned on error.
func (r *Reader) Read(fsys fs.FS, name string, opts ReadOptions) (*block.Block, error) {
	src, err := ListSources(fsys, name)
	if err != nil {
		return nil, err
	}

	var dest *block.Block
	if opts.knownSize() {
		dest = block.NewForEstimate(opts.Rows, opts.Cols, opts.EstNonZeros)
	} else if dest, err = r.InferSize(src); err != nil {
		return nil, err
	}

	if err := r.Populate(src, dest); err != nil {
		return nil, err
	}
	dest.ExamineSparsity()
	return dest, nil
}

// InferSize is the first pass: the column count comes from the first data
// line, the row count from all data lines. The result is an empty sparse
// block of that size.
func (r *Reader) InferSize(src Sources) (*block.Block, error) {
	rows, cols := 0, 0
	for i, p := range src.paths {
		err := r.scan(src.fsys, p, i == 0, func(_ int, line string) error {
			if rows == 0 {
				cols = strings.Count(strings.TrimSpace(line), r.props.Delimiter) + 1
			}
			rows++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return block.New(rows, cols, true), nil
}

// Populate is the second pass. It fills dest through sparse appends or dense
// writes depending on dest's representation and commits the non-zero count
// once at the end. dest must be freshly allocated.
func (r *Reader) Populate(src Sources, dest *block.Block) error {
	var (
		row    int
		nnz    int64
		sparse = dest.IsSparse()
		rows   = dest.Rows()
		cols   = dest.Cols()
		delim  = r.props.Delimiter
	)
	for i, p := range src.paths {
		err := r.scan(src.fsys, p, i == 0, func(lineNo int, line string) error {
			if row >= rows {
				return &FormatError{Kind: ErrTooManyRows, Path: p, LineNo: lineNo, Line: line,
					Detail: "expected " + strconv.Itoa(rows)}
			}
			cellStr := strings.TrimSpace(line)
			parts := strings.Split(cellStr, delim)
			emptyFound := false
			for col, part := range parts {
				var v float64
				if part = strings.TrimSpace(part); part == "" {
					emptyFound = true
					v = r.props.FillValue
				} else {
					var err error
					if v, err = strconv.ParseFloat(part, 64); err != nil {
						return &FormatError{Kind: ErrParseValue, Path: p, LineNo: lineNo, Line: line,
							Detail: strconv.Quote(part)}
					}
				}
				if v == 0 || col >= cols {
					continue
				}
				if sparse {
					_ = dest.Append(row, col, v)
				} else {
					dest.SetDense(row, col, v)
				}
				nnz++
			}

			if emptyFound && !r.props.Fill {
				return &FormatError{Kind: ErrEmptyField, Path: p, LineNo: lineNo, Line: line,
					Detail: "enable fill to read files with empty fields"}
			}
			if len(parts) != cols {
				return &FormatError{Kind: ErrColumnMismatch, Path: p, LineNo: lineNo, Line: line,
					Detail: strconv.Itoa(len(parts)) + ", expected=" + strconv.Itoa(cols)}
			}
			row++
			return nil
		})
		if err != nil {
			return err
		}
	}
	dest.SetNonZeros(nnz)
	return nil
}

// scan opens one stream, optionally skips its header line, and calls fn for
// every remaining line with its 1-based line number. The stream is closed on
// every path out.
func (r *Reader) scan(fsys fs.FS, name string, first bool, fn func(lineNo int, line string) error) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	skip := first && r.props.HasHeader
	return eachLine(f, func(lineNo int, line string) error {
		if skip {
			skip = false
			return nil
		}
		return fn(lineNo, line)
	})
}

// eachLine splits rd on '\n', dropping a trailing '\r'. A final newline does
// not produce an extra empty line.
func eachLine(rd io.Reader, fn func(lineNo int, line string) error) error {
	br := bufio.NewReaderSize(rd, 64<<10)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line == "" && err != nil {
			return nil
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if ferr := fn(lineNo, line); ferr != nil {
			return ferr
		}
		if err != nil {
			return nil
		}
	}
}
