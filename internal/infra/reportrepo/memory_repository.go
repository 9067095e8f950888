package reportrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// MemoryRepository keeps reports in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]outlook.Report
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[string]outlook.Report)}
}

func (r *MemoryRepository) Save(_ context.Context, report outlook.Report) error {
	r.mu.Lock()
	r.reports[report.ID] = report
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (outlook.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	return report, ok, nil
}

func (r *MemoryRepository) Latest(_ context.Context, location string) (outlook.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		latest outlook.Report
		found  bool
	)
	for _, report := range r.reports {
		if report.Location.Name != location {
			continue
		}
		if !found || report.GeneratedAt.After(latest.GeneratedAt) {
			latest, found = report, true
		}
	}
	return latest, found, nil
}

// List returns the newest reports first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]outlook.Report, error) {
	r.mu.RLock()
	out := make([]outlook.Report, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, report)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ outlook.ReportRepository = (*MemoryRepository)(nil)
