package service

import "context"

// Transactor runs fn as one unit of work. Repositories called with the ctx
// passed to fn take part in it; it commits when fn returns nil and rolls
// back otherwise, returning fn's error unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
