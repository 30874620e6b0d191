// Package api serves block reads and instruction programs over HTTP.
package api

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/matcore/internal/engine"
	"github.com/samcharles93/matcore/internal/instruction"
	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/internal/version"
	"github.com/samcharles93/matcore/pkg/block"
	"github.com/samcharles93/matcore/pkg/csvio"
)

const headerRequestID = "X-Request-Id"

// Options configure a Server. Data is the root every request path resolves
// against.
type Options struct {
	Data        fs.FS
	CSV         csvio.Properties
	BlockRows   int
	BlockCols   int
	Parallelism int
	Timeout     time.Duration
	Logger      logger.Logger
	Store       *ResultStore
}

type Server struct {
	opts  Options
	log   logger.Logger
	store *ResultStore
	clock func() time.Time
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Store == nil {
		opts.Store = NewResultStore(0)
	}
	return &Server{
		opts:  opts,
		log:   opts.Logger,
		store: opts.Store,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(s.requestID)

	e.POST("/v1/read", s.handleRead)
	e.POST("/v1/exec", s.handleExec)
	e.GET("/v1/results", s.handleListResults)
	e.GET("/v1/results/:id", s.handleGetResult)
	e.GET("/v1/results/:id/data", s.handleResultData)
	e.DELETE("/v1/results/:id", s.handleDeleteResult)
	e.GET("/v1/version", s.handleVersion)
}

// requestID echoes the caller's request id or assigns a new one.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

func (s *Server) requestContext(c *echo.Context) (context.Context, context.CancelFunc) {
	log := s.log.With("request_id", c.Response().Header().Get(headerRequestID))
	ctx := logger.WithContext(c.Request().Context(), log)
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) handleRead(c *echo.Context) error {
	req, err := decodeJSON[ReadRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	b, err := s.read(ctx, req)
	if err != nil {
		return writeFailure(c, err)
	}
	rep, err := s.summarize(req, b)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (s *Server) handleExec(c *echo.Context) error {
	req, err := decodeJSON[ExecRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Instructions) == 0 {
		return writeBadRequest(c, "instructions is required and must not be empty")
	}
	prog, err := instruction.ParseProgram(req.Instructions)
	if err != nil {
		return writeFailure(c, err)
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	m, err := s.read(ctx, req.ReadRequest)
	if err != nil {
		return writeFailure(c, err)
	}
	res, err := engine.Run(ctx, m, engine.Job{
		InputTag:    instruction.Tag(req.InputTag),
		OutputTag:   instruction.Tag(req.OutputTag),
		Program:     prog,
		BlockRows:   pick(req.BlockRows, s.opts.BlockRows),
		BlockCols:   pick(req.BlockCols, s.opts.BlockCols),
		Parallelism: s.opts.Parallelism,
	})
	if err != nil {
		return writeFailure(c, err)
	}

	out := ExecResult{
		ID: res.RunID,
		Report: report.Report{
			Source:  req.Path,
			RunID:   res.RunID,
			Matrix:  report.Summarize(res.Block),
			Elapsed: res.Elapsed.String(),
		},
	}
	format := req.Format.apply(s.opts.CSV)
	s.store.Save(out, res.Block, format, s.clock())
	if req.IncludeData {
		data, err := encode(res.Block, format)
		if err != nil {
			return writeFailure(c, err)
		}
		out.Data = data
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListResults(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   s.store.List(),
	})
}

func (s *Server) handleGetResult(c *echo.Context) error {
	res, _, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "result not found")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleResultData(c *echo.Context) error {
	b, format, ok := s.store.Data(c.Param("id"))
	if !ok {
		return writeNotFound(c, "result not found")
	}
	data, err := encode(b, format)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(data))
}

func (s *Server) handleDeleteResult(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "result not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleVersion(c *echo.Context) error {
	info := version.Resolve()
	return c.JSON(http.StatusOK, VersionResponse{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
		GoVersion: info.GoVersion,
	})
}

func (s *Server) read(ctx context.Context, req ReadRequest) (*block.Block, error) {
	name := strings.TrimPrefix(strings.TrimSpace(req.Path), "/")
	if name == "" {
		return nil, newInvalidRequest("path is required")
	}
	if !fs.ValidPath(name) {
		return nil, newInvalidRequest("path must stay inside the data directory")
	}
	if s.opts.Data == nil {
		return nil, newInvalidRequest("no data directory configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rd, err := csvio.NewReader(req.Format.apply(s.opts.CSV))
	if err != nil {
		return nil, err
	}
	opts := csvio.UnknownSize()
	if req.Rows > 0 && req.Cols > 0 {
		opts.Rows, opts.Cols = req.Rows, req.Cols
	}
	opts.BlockRows, opts.BlockCols = req.BlockRows, req.BlockCols

	start := time.Now()
	b, err := rd.Read(s.opts.Data, name, opts)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("read matrix", "path", name, "rows", b.Rows(), "cols", b.Cols(),
		"nnz", b.NonZeros(), "sparse", b.IsSparse(), "elapsed", time.Since(start))
	return b, nil
}

func (s *Server) summarize(req ReadRequest, b *block.Block) (report.Report, error) {
	rep := report.Report{Source: req.Path, Matrix: report.Summarize(b)}
	if req.BlockRows > 0 && req.BlockCols > 0 {
		parts, err := block.Partition(b, req.BlockRows, req.BlockCols)
		if err != nil {
			return report.Report{}, newInvalidRequest(err.Error())
		}
		rep.Blocks = report.SummarizeGrid(parts)
	}
	return rep, nil
}

func encode(b *block.Block, p csvio.Properties) (string, error) {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, b, csvio.WritePropertiesFor(p)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func pick(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeFailure(c *echo.Context, err error) error {
	status, errType := classify(err)
	return writeError(c, status, errType, err.Error())
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}
