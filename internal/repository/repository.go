// Package repository handles all interactions with the document store.
//
// Every driver implements VisitorRepository, a write-once append sink for
// visitor records. Drivers are selected by store.driver and wrapped with
// instrumentation (and optionally a background queue) in NewRepositories.
package repository

import (
	"context"

	"github.com/deppfellow/visitor-function/internal/model"
)

// VisitorRepository persists visitor records.
type VisitorRepository interface {
	// Save writes one record. Implementations never update an existing record.
	Save(ctx context.Context, visitor model.Visitor) error

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the driver's resources.
	Close(ctx context.Context) error

	// Driver names the backend, matching store.driver.
	Driver() string
}
