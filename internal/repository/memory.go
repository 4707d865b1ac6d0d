package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/model"
)

// MemoryRepository keeps records in process memory. It backs local runs and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []model.Visitor
	ids     map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[string]struct{})}
}

func (r *MemoryRepository) Save(ctx context.Context, visitor model.Visitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[visitor.ID]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateID, visitor.ID)
	}
	r.ids[visitor.ID] = struct{}{}
	r.records = append(r.records, visitor)
	return nil
}

// Records returns a copy of everything saved so far, in write order.
func (r *MemoryRepository) Records() []model.Visitor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Visitor, len(r.records))
	copy(out, r.records)
	return out
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close(context.Context) error {
	return nil
}

func (r *MemoryRepository) Driver() string {
	return config.DriverMemory
}
