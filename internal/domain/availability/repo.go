package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type WeeklyRepository interface {
	Create(ctx context.Context, w *Weekly) error
	GetByID(ctx context.Context, id uuid.UUID) (*Weekly, error)
	Update(ctx context.Context, w *Weekly) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Weekly, int, error)
	// ListForDay returns every weekly record for the dentist on the given
	// day across all branches, ordered by start time.
	ListForDay(ctx context.Context, dentistID uuid.UUID, day DayOfWeek) ([]*Weekly, error)
	// ListForDayAndBranch scopes ListForDay to one branch; used by the
	// overlap invariant check.
	ListForDayAndBranch(ctx context.Context, dentistID uuid.UUID, day DayOfWeek, branchID uuid.UUID) ([]*Weekly, error)
}

type SpecificRepository interface {
	Create(ctx context.Context, s *Specific) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specific, error)
	Update(ctx context.Context, s *Specific) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Specific, int, error)
	// ListOverlapping returns all specific windows for the dentist that
	// intersect [from, to).
	ListOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Specific, error)
}

type LeaveRepository interface {
	Create(ctx context.Context, l *Leave) error
	GetByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	Update(ctx context.Context, l *Leave) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Leave, int, error)
	// ListOverlapping returns all leave windows for the dentist that
	// intersect [from, to).
	ListOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Leave, error)
}
