// Package repository defines the assessment store interface, its errors, and
// the in-memory implementation. SQL backed stores live in subpackages.
package repository

import (
	"context"
	"fmt"

	"github.com/impactwon/checkin/internal/domain/model"
)

// MaxPageSize bounds List requests.
const MaxPageSize = 1000

// Store keeps submitted assessment rows.
type Store interface {
	// Insert adds a row. Returns ErrDuplicate if the id is already stored.
	Insert(ctx context.Context, rec model.Record) error

	// Get returns the row with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Record, error)

	// List returns rows ordered by creation time, oldest first.
	List(ctx context.Context, limit, offset int) ([]model.Record, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)

	Close() error
}

// CheckPage validates List arguments.
func CheckPage(limit, offset int) error {
	if limit <= 0 || limit > MaxPageSize {
		return fmt.Errorf("%w: limit %d", ErrInvalidLimit, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrInvalidLimit, offset)
	}
	return nil
}
