package block

import "errors"

var (
	ErrOutOfBounds       = errors.New("block: index out of bounds")
	ErrNotSparse         = errors.New("block: append requires sparse representation")
	ErrDimensionMismatch = errors.New("block: dimension mismatch")
	ErrInvalidGrid       = errors.New("block: invalid block size")
)
