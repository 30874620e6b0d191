package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/matcore/pkg/block"
)

func sample(t *testing.T) *block.Block {
	t.Helper()
	b := block.New(2000, 3, true)
	require.NoError(t, b.Append(0, 0, 1))
	require.NoError(t, b.Append(1999, 2, 5))
	return b
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sample(t))
	assert.Equal(t, 2000, s.Rows)
	assert.Equal(t, 3, s.Cols)
	assert.Equal(t, int64(2), s.NonZeros)
	assert.True(t, s.Sparse)
	assert.Nil(t, s.Index)
	assert.Positive(t, s.MemoryBytes)
}

func TestSummarizeGridSkipsAbsent(t *testing.T) {
	t.Parallel()

	parts, err := block.Partition(sample(t), 1000, 3)
	require.NoError(t, err)
	parts = append(parts, nil, &block.IndexedBlock{Index: block.Indexes{Row: 9, Col: 9}})

	got := SummarizeGrid(parts)
	require.Len(t, got, 2)
	assert.Equal(t, block.Indexes{Row: 2, Col: 1}, *got[1].Index)
	assert.Equal(t, int64(1), got[1].NonZeros)
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	b := sample(t)
	parts, err := block.Partition(b, 1000, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Report{
		Source: "data.csv",
		Matrix: Summarize(b),
		Blocks: SummarizeGrid(parts),
	}, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "data.csv")
	assert.Contains(t, out, "2,000")
	assert.Contains(t, out, "sparse")
	assert.Contains(t, out, "(1,1)")
	assert.Contains(t, out, "(2,1)")
	assert.True(t, strings.HasSuffix(out, "(2 blocks)\n"))
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Report{RunID: "r1", Matrix: Summarize(sample(t))}, FormatJSON))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 2000, got.Matrix.Rows)
	assert.Empty(t, got.Blocks)
	assert.NotContains(t, buf.String(), `"blocks"`)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}
