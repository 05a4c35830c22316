package store

import (
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu      sync.Mutex
	runs    map[int64]*Run
	nextRun int64
	crashes []*Crash
	nextCr  int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[int64]*Run)}
}

func (m *MemStore) CreateRun(r *Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRun++
	if r.StartedAt == "" {
		r.StartedAt = nowUTC()
	}
	if r.Status == "" {
		r.Status = "running"
	}
	cp := *r
	cp.ID = m.nextRun
	m.runs[cp.ID] = &cp
	r.ID = cp.ID
	return cp.ID, nil
}

func (m *MemStore) FinishRun(r *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.runs[r.ID]
	if !ok {
		return nil
	}
	if r.FinishedAt == "" {
		r.FinishedAt = nowUTC()
	}
	stored.FinishedAt = r.FinishedAt
	stored.Status = r.Status
	stored.Submitted = r.Submitted
	stored.Valid = r.Valid
	stored.Invalid = r.Invalid
	stored.Crashed = r.Crashed
	return nil
}

func (m *MemStore) GetRun(id int64) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) ListRuns() ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	return runs, nil
}

func (m *MemStore) InsertCrash(c *Crash) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCr++
	if c.CreatedAt == "" {
		c.CreatedAt = nowUTC()
	}
	cp := *c
	cp.ID = m.nextCr
	m.crashes = append(m.crashes, &cp)
	c.ID = cp.ID
	return cp.ID, nil
}

func (m *MemStore) ListCrashesByRun(runID int64) ([]*Crash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Crash
	for _, c := range m.crashes {
		if c.RunID == runID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }
