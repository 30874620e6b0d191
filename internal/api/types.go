package api

import (
	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/pkg/csvio"
)

// FormatRequest overrides the server's default delimited-text properties.
type FormatRequest struct {
	Header    *bool    `json:"header,omitempty"`
	Delimiter *string  `json:"delimiter,omitempty"`
	Fill      *bool    `json:"fill,omitempty"`
	FillValue *float64 `json:"fill_value,omitempty"`
}

func (f *FormatRequest) apply(p csvio.Properties) csvio.Properties {
	if f == nil {
		return p
	}
	if f.Header != nil {
		p.HasHeader = *f.Header
	}
	if f.Delimiter != nil {
		p.Delimiter = *f.Delimiter
	}
	if f.Fill != nil {
		p.Fill = *f.Fill
	}
	if f.FillValue != nil {
		p.FillValue = *f.FillValue
	}
	return p
}

// ReadRequest reads a file or directory below the data directory. Rows and
// Cols <= 0 mean the size is inferred.
type ReadRequest struct {
	Path      string         `json:"path"`
	Rows      int            `json:"rows,omitempty"`
	Cols      int            `json:"cols,omitempty"`
	Format    *FormatRequest `json:"format,omitempty"`
	BlockRows int            `json:"block_rows,omitempty"`
	BlockCols int            `json:"block_cols,omitempty"`
}

type ExecRequest struct {
	ReadRequest
	InputTag     string   `json:"input_tag,omitempty"`
	OutputTag    string   `json:"output_tag,omitempty"`
	Instructions []string `json:"instructions"`
	IncludeData  bool     `json:"include_data,omitempty"`
}

type ExecResult struct {
	ID     string        `json:"id"`
	Report report.Report `json:"report"`
	Data   string        `json:"data,omitempty"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
