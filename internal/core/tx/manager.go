// Package tx defines the unit-of-work contract used by domain services.
package tx

import (
	"context"
)

// Manager runs a function inside one atomic unit of work.
//
// If fn returns an error every write made through ctx is rolled back.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
