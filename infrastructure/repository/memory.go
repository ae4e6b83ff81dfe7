package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
)

// memoryAnalysisRepository mantém as execuções em memória (STORAGE_DRIVER=memory)
type memoryAnalysisRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.AnalysisRun
}

func NewMemoryAnalysisRepository() AnalysisRepository {
	return &memoryAnalysisRepository{
		runs: make(map[string]domain.AnalysisRun),
	}
}

func (r *memoryAnalysisRepository) Save(_ context.Context, run *domain.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = *run
	return nil
}

func (r *memoryAnalysisRepository) GetByID(_ context.Context, id string) (*domain.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (r *memoryAnalysisRepository) ListIdentifiers(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unique := make(map[string]struct{})
	for _, run := range r.runs {
		for _, id := range run.Identifiers() {
			unique[id] = struct{}{}
		}
	}

	identifiers := make([]string, 0, len(unique))
	for id := range unique {
		identifiers = append(identifiers, id)
	}
	sort.Strings(identifiers)

	return identifiers, nil
}

func (r *memoryAnalysisRepository) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, run := range r.runs {
		if run.CreatedAt.Before(before) {
			delete(r.runs, id)
			deleted++
		}
	}
	return deleted, nil
}
