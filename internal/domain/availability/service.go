package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/clock"
	"github.com/dentica/dentica/internal/platform/db"
)

// RefChecker verifies that referenced dentists and clinic branches exist.
// Implemented by the identity service.
type RefChecker interface {
	DentistExists(ctx context.Context, id uuid.UUID) (bool, error)
	BranchExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	weekly    WeeklyRepository
	specific  SpecificRepository
	leaves    LeaveRepository
	refs      RefChecker
	pool      *pgxpool.Pool
}

// NewService wires the availability service. pool may be nil in tests; when
// set, writes that depend on a read-check run inside one transaction.
func NewService(weekly WeeklyRepository, specific SpecificRepository, leaves LeaveRepository, refs RefChecker, pool *pgxpool.Pool) *Service {
	return &Service{weekly: weekly, specific: specific, leaves: leaves, refs: refs, pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// -- Weekly --

// CreateWeekly validates and persists a recurring weekly window. The overlap
// check and the insert run in one transaction so two concurrent inserts
// cannot both pass the check.
func (s *Service) CreateWeekly(ctx context.Context, w *Weekly) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.validateWeekly(ctx, w, uuid.Nil); err != nil {
			return err
		}
		return s.weekly.Create(ctx, w)
	})
}

// UpdateWeekly revalidates the edited window, excluding the record itself
// from the overlap check.
func (s *Service) UpdateWeekly(ctx context.Context, w *Weekly) error {
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.weekly.GetByID(ctx, w.ID); err != nil {
			return err
		}
		if err := s.validateWeekly(ctx, w, w.ID); err != nil {
			return err
		}
		return s.weekly.Update(ctx, w)
	})
}

func (s *Service) validateWeekly(ctx context.Context, w *Weekly, excludeID uuid.UUID) error {
	if !w.DayOfWeek.Valid() {
		return apperr.Validation("invalid day_of_week %q", w.DayOfWeek).WithField("day_of_week", "must be monday..sunday")
	}
	start, err := clock.ParseTimeOfDay(w.StandardStartTime)
	if err != nil {
		return apperr.Validation("invalid standard_start_time %q", w.StandardStartTime).WithField("standard_start_time", "expected HH:MM")
	}
	end, err := clock.ParseTimeOfDay(w.StandardEndTime)
	if err != nil {
		return apperr.Validation("invalid standard_end_time %q", w.StandardEndTime).WithField("standard_end_time", "expected HH:MM")
	}
	if start >= end {
		return apperr.Validation("standard_start_time must be before standard_end_time")
	}

	if (w.BreakStartTime == nil) != (w.BreakEndTime == nil) {
		return apperr.Validation("break_start_time and break_end_time must be set together")
	}
	if w.BreakStartTime != nil {
		bs, err := clock.ParseTimeOfDay(*w.BreakStartTime)
		if err != nil {
			return apperr.Validation("invalid break_start_time %q", *w.BreakStartTime).WithField("break_start_time", "expected HH:MM")
		}
		be, err := clock.ParseTimeOfDay(*w.BreakEndTime)
		if err != nil {
			return apperr.Validation("invalid break_end_time %q", *w.BreakEndTime).WithField("break_end_time", "expected HH:MM")
		}
		if bs >= be {
			return apperr.Validation("break_start_time must be before break_end_time")
		}
		if bs < start || be > end {
			return apperr.Validation("break must lie within standard hours")
		}
	}

	if err := s.checkDentist(ctx, w.DentistID); err != nil {
		return err
	}
	if w.BranchID == uuid.Nil {
		return apperr.Validation("clinic_branch_id is required")
	}
	ok, err := s.refs.BranchExists(ctx, w.BranchID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("clinic branch %s not found", w.BranchID)
	}

	// Overlap invariant: the outer [start,end) bounds of two weekly rows
	// for the same dentist/day/branch must not intersect. Breaks do not
	// subtract from this check, and touching endpoints are allowed.
	existing, err := s.weekly.ListForDayAndBranch(ctx, w.DentistID, w.DayOfWeek, w.BranchID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		os, oe, err := other.Window()
		if err != nil {
			return err
		}
		if start < oe && end > os {
			return apperr.Conflict("time slot overlaps existing availability %s-%s on %s",
				os, oe, w.DayOfWeek)
		}
	}
	return nil
}

func (s *Service) GetWeekly(ctx context.Context, id uuid.UUID) (*Weekly, error) {
	return s.weekly.GetByID(ctx, id)
}

func (s *Service) DeleteWeekly(ctx context.Context, id uuid.UUID) error {
	if _, err := s.weekly.GetByID(ctx, id); err != nil {
		return err
	}
	return s.weekly.Delete(ctx, id)
}

func (s *Service) ListWeeklyByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Weekly, int, error) {
	return s.weekly.ListByDentist(ctx, dentistID, limit, offset)
}

// -- Specific --

func (s *Service) CreateSpecific(ctx context.Context, sp *Specific) error {
	if err := s.validateSpecific(ctx, sp); err != nil {
		return err
	}
	return s.specific.Create(ctx, sp)
}

func (s *Service) UpdateSpecific(ctx context.Context, sp *Specific) error {
	if _, err := s.specific.GetByID(ctx, sp.ID); err != nil {
		return err
	}
	if err := s.validateSpecific(ctx, sp); err != nil {
		return err
	}
	return s.specific.Update(ctx, sp)
}

// validateSpecific checks ordering and referential existence only.
// Overlapping specific windows for the same dentist are permitted.
func (s *Service) validateSpecific(ctx context.Context, sp *Specific) error {
	if sp.StartDateTime.IsZero() || sp.EndDateTime.IsZero() {
		return apperr.Validation("start_datetime and end_datetime are required")
	}
	if !sp.StartDateTime.Before(sp.EndDateTime) {
		return apperr.Validation("start_datetime must be before end_datetime")
	}
	if err := s.checkDentist(ctx, sp.DentistID); err != nil {
		return err
	}
	if sp.BranchID != nil {
		ok, err := s.refs.BranchExists(ctx, *sp.BranchID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("clinic branch %s not found", *sp.BranchID)
		}
	}
	return nil
}

func (s *Service) GetSpecific(ctx context.Context, id uuid.UUID) (*Specific, error) {
	return s.specific.GetByID(ctx, id)
}

func (s *Service) DeleteSpecific(ctx context.Context, id uuid.UUID) error {
	if _, err := s.specific.GetByID(ctx, id); err != nil {
		return err
	}
	return s.specific.Delete(ctx, id)
}

func (s *Service) ListSpecificByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Specific, int, error) {
	return s.specific.ListByDentist(ctx, dentistID, limit, offset)
}

// -- Leave --

func (s *Service) CreateLeave(ctx context.Context, l *Leave) error {
	if err := s.validateLeave(ctx, l); err != nil {
		return err
	}
	return s.leaves.Create(ctx, l)
}

func (s *Service) UpdateLeave(ctx context.Context, l *Leave) error {
	if _, err := s.leaves.GetByID(ctx, l.ID); err != nil {
		return err
	}
	if err := s.validateLeave(ctx, l); err != nil {
		return err
	}
	return s.leaves.Update(ctx, l)
}

func (s *Service) validateLeave(ctx context.Context, l *Leave) error {
	if l.StartDateTime.IsZero() || l.EndDateTime.IsZero() {
		return apperr.Validation("start_datetime and end_datetime are required")
	}
	if !l.StartDateTime.Before(l.EndDateTime) {
		return apperr.Validation("start_datetime must be before end_datetime")
	}
	return s.checkDentist(ctx, l.DentistID)
}

func (s *Service) GetLeave(ctx context.Context, id uuid.UUID) (*Leave, error) {
	return s.leaves.GetByID(ctx, id)
}

func (s *Service) DeleteLeave(ctx context.Context, id uuid.UUID) error {
	if _, err := s.leaves.GetByID(ctx, id); err != nil {
		return err
	}
	return s.leaves.Delete(ctx, id)
}

func (s *Service) ListLeavesByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Leave, int, error) {
	return s.leaves.ListByDentist(ctx, dentistID, limit, offset)
}

func (s *Service) checkDentist(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperr.Validation("dentist_id is required")
	}
	ok, err := s.refs.DentistExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("dentist %s not found", id)
	}
	return nil
}

// -- Reads used by the conflict engine and slot query --

// WeeklyForDay returns the dentist's weekly windows for a weekday across all
// branches.
func (s *Service) WeeklyForDay(ctx context.Context, dentistID uuid.UUID, day time.Weekday) ([]*Weekly, error) {
	return s.weekly.ListForDay(ctx, dentistID, FromWeekday(day))
}

// SpecificsOverlapping returns specific windows intersecting [from, to).
func (s *Service) SpecificsOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Specific, error) {
	return s.specific.ListOverlapping(ctx, dentistID, from, to)
}

// LeavesOverlapping returns leave windows intersecting [from, to).
func (s *Service) LeavesOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*Leave, error) {
	return s.leaves.ListOverlapping(ctx, dentistID, from, to)
}
