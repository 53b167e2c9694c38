package ports

import (
	"context"
	"time"
)

// Transactor runs fn inside one storage transaction. Stores called with the
// context passed to fn join that transaction; any error rolls it back.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
