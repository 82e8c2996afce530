package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments. Reads that return a single appointment
// include the joined patient, dentist and scheduler summaries.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	// ListByDentistAndDate returns every appointment of the dentist whose
	// appointment_date equals date exactly. The conflict check depends on
	// this being instant equality rather than a day range.
	ListByDentistAndDate(ctx context.Context, dentistID uuid.UUID, date time.Time) ([]*Appointment, error)
}
