package ports

import (
	"context"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// ActivityRepository persists audit events.
type ActivityRepository interface {
	Insert(ctx context.Context, event *domain.ActivityEvent) error
}

// ActivityRecorder accepts audit events without blocking the caller.
// Recording is best-effort; auth decisions never depend on it.
type ActivityRecorder interface {
	Record(event domain.ActivityEvent)
}
