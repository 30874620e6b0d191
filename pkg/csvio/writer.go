package csvio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/samcharles93/matcore/pkg/block"
)

// WriteProperties describe the delimited text produced by Write.
type WriteProperties struct {
	Header    bool
	Delimiter string
	// Sparse writes zero cells as empty fields. Reading such output needs
	// fill enabled with a fill value of 0.
	Sparse bool
}

// WritePropertiesFor mirrors read properties: zeros are left empty when the
// reader would fill them back with 0.
func WritePropertiesFor(p Properties) WriteProperties {
	return WriteProperties{
		Header:    p.HasHeader,
		Delimiter: p.Delimiter,
		Sparse:    p.Fill && p.FillValue == 0,
	}
}

// Write serialises b one row per line.
func Write(w io.Writer, b *block.Block, props WriteProperties) error {
	if props.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidProperties)
	}
	bw := bufio.NewWriter(w)
	if props.Header {
		for c := 0; c < b.Cols(); c++ {
			if c > 0 {
				_, _ = bw.WriteString(props.Delimiter)
			}
			_, _ = bw.WriteString("C" + strconv.Itoa(c+1))
		}
		_ = bw.WriteByte('\n')
	}

	buf := make([]byte, 0, 32)
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if c > 0 {
				_, _ = bw.WriteString(props.Delimiter)
			}
			v := b.Get(r, c)
			if v == 0 && props.Sparse {
				continue
			}
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			_, _ = bw.Write(buf)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes b to path, replacing any existing file.
func WriteFile(path string, b *block.Block, props WriteProperties) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, b, props)
}
