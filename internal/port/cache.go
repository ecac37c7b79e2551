package port

import (
	"context"
	"time"

	"github.com/dk2904/aircraft-factory/internal/core/domain"
)

// Cache holds read-only catalog and identity snapshots. Lookups report
// a miss with found=false; callers fall back to the Store and treat
// cache errors as misses.
type Cache interface {
	GetUser(ctx context.Context, username string) (*domain.User, bool, error)
	SetUser(ctx context.Context, user *domain.User, ttl time.Duration) error

	GetPlane(ctx context.Context, id int64) (*domain.Plane, bool, error)
	SetPlane(ctx context.Context, plane *domain.Plane, ttl time.Duration) error
}
