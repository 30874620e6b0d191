package csvio

import "fmt"

// Properties describe a delimited text format.
type Properties struct {
	HasHeader bool
	Delimiter string
	// Fill allows empty fields, which then read as FillValue.
	Fill      bool
	FillValue float64
}

// DefaultProperties is comma separated, no header, no fill.
func DefaultProperties() Properties {
	return Properties{Delimiter: ","}
}

func (p Properties) Validate() error {
	if p.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidProperties)
	}
	return nil
}

// Unknown requests dimension inference in ReadOptions.
const Unknown = -1

// ReadOptions carry what the caller already knows about the matrix.
type ReadOptions struct {
	// Rows and Cols set to Unknown (or any value < 1) trigger size inference.
	Rows, Cols int
	// BlockRows and BlockCols are the grid granularity of the matrix. The
	// reader passes them through untouched.
	BlockRows, BlockCols int
	// EstNonZeros sizes the output when dimensions are known; < 0 is unknown.
	EstNonZeros int64
}

// UnknownSize returns options that infer dimensions from the input.
func UnknownSize() ReadOptions {
	return ReadOptions{Rows: Unknown, Cols: Unknown, EstNonZeros: Unknown}
}

func (o ReadOptions) knownSize() bool {
	return o.Rows > 0 && o.Cols > 0
}
