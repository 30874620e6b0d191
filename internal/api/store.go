package api

import (
	"sync"
	"time"

	"github.com/samcharles93/matcore/internal/report"
	"github.com/samcharles93/matcore/pkg/block"
	"github.com/samcharles93/matcore/pkg/csvio"
)

// DefaultMaxResults bounds a ResultStore created with a non-positive limit.
const DefaultMaxResults = 64

type resultRecord struct {
	Result    ExecResult
	Block     *block.Block
	Format    csvio.Properties
	CreatedAt time.Time
}

// ResultStore keeps the most recent exec results by run id. The oldest
// result is evicted once the limit is reached.
type ResultStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	results map[string]*resultRecord
}

func NewResultStore(limit int) *ResultStore {
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	return &ResultStore{
		limit:   limit,
		results: make(map[string]*resultRecord),
	}
}

// Save records a result together with the format its input was read in, so
// the data can later be encoded the same way.
func (s *ResultStore) Save(res ExecResult, b *block.Block, format csvio.Properties, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[res.ID]; !ok {
		s.order = append(s.order, res.ID)
	}
	s.results[res.ID] = &resultRecord{Result: res, Block: b, Format: format, CreatedAt: now}
	for len(s.order) > s.limit {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *ResultStore) Get(id string) (ExecResult, *block.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.results[id]
	if !ok {
		return ExecResult{}, nil, false
	}
	return rec.Result, rec.Block, true
}

// Data returns the result block and the format it was produced under.
func (s *ResultStore) Data(id string) (*block.Block, csvio.Properties, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.results[id]
	if !ok {
		return nil, csvio.Properties{}, false
	}
	return rec.Block, rec.Format, true
}

func (s *ResultStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[id]; !ok {
		return false
	}
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns summaries of the stored results, oldest first.
func (s *ResultStore) List() []report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]report.Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.results[id].Result.Report)
	}
	return out
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
