// Package report renders block summaries for the CLI and the HTTP API.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/samcharles93/matcore/pkg/block"
)

// Format selects an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Summary describes one block. Index is set for grid blocks only.
type Summary struct {
	Index       *block.Indexes `json:"index,omitempty"`
	Rows        int            `json:"rows"`
	Cols        int            `json:"cols"`
	NonZeros    int64          `json:"non_zeros"`
	Sparse      bool           `json:"sparse"`
	Sparsity    float64        `json:"sparsity"`
	MemoryBytes int64          `json:"memory_bytes"`
}

func Summarize(b *block.Block) Summary {
	return Summary{
		Rows:        b.Rows(),
		Cols:        b.Cols(),
		NonZeros:    b.NonZeros(),
		Sparse:      b.IsSparse(),
		Sparsity:    b.Sparsity(),
		MemoryBytes: b.InMemorySize(),
	}
}

// SummarizeGrid summarizes every present block of a grid. Absent blocks are
// left out.
func SummarizeGrid(parts []*block.IndexedBlock) []Summary {
	out := make([]Summary, 0, len(parts))
	for _, p := range parts {
		if p == nil || p.Value == nil {
			continue
		}
		s := Summarize(p.Value)
		ix := p.Index
		s.Index = &ix
		out = append(out, s)
	}
	return out
}

// Report is what the read and exec commands print.
type Report struct {
	Source  string    `json:"source,omitempty"`
	RunID   string    `json:"run_id,omitempty"`
	Matrix  Summary   `json:"matrix"`
	Blocks  []Summary `json:"blocks,omitempty"`
	Elapsed string    `json:"elapsed,omitempty"`
}

func Render(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	default:
		RenderTable(w, r)
		return nil
	}
}

func RenderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderTable prints the matrix summary followed by the grid breakdown, if
// any.
func RenderTable(w io.Writer, r Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if r.Source != "" {
		t.SetTitle(r.Source)
	}
	t.AppendHeader(table.Row{"Rows", "Cols", "Non-zeros", "Format", "Sparsity", "Memory"})
	t.AppendRow(summaryRow(r.Matrix))
	if r.RunID != "" {
		t.AppendFooter(table.Row{"run", r.RunID, "", "", "elapsed", r.Elapsed})
	}
	t.Render()

	if len(r.Blocks) == 0 {
		return
	}
	g := table.NewWriter()
	g.SetOutputMirror(w)
	g.SetStyle(table.StyleLight)
	g.AppendHeader(table.Row{"Block", "Rows", "Cols", "Non-zeros", "Format", "Sparsity", "Memory"})
	for _, s := range r.Blocks {
		idx := ""
		if s.Index != nil {
			idx = s.Index.String()
		}
		g.AppendRow(append(table.Row{idx}, summaryRow(s)...))
	}
	g.Render()
	_, _ = fmt.Fprintf(w, "(%d blocks)\n", len(r.Blocks))
}

func summaryRow(s Summary) table.Row {
	return table.Row{
		humanize.Comma(int64(s.Rows)),
		humanize.Comma(int64(s.Cols)),
		humanize.Comma(s.NonZeros),
		formatName(s.Sparse),
		strconv.FormatFloat(s.Sparsity, 'f', 4, 64),
		humanize.IBytes(uint64(max(s.MemoryBytes, 0))),
	}
}

func formatName(sparse bool) string {
	if sparse {
		return "sparse"
	}
	return "dense"
}
