package appointment

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentica/dentica/internal/domain/identity"
	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/auth"
	"github.com/dentica/dentica/internal/platform/clock"
	"github.com/dentica/dentica/internal/platform/db"
	"github.com/dentica/dentica/internal/platform/notification"
)

// IdentityReader is the slice of the identity service the appointment
// service needs for referential checks and notification names.
type IdentityReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	DentistExists(ctx context.Context, id uuid.UUID) (bool, error)
	BranchExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo    Repository
	checker *Checker
	refs    IdentityReader
	clk     *clock.Clock
	notif   *notification.Engine
	pool    *pgxpool.Pool
}

// NewService wires the appointment service. pool may be nil in tests; when
// set, the conflict check and the write run in one serializable transaction.
func NewService(repo Repository, checker *Checker, refs IdentityReader, clk *clock.Clock, notif *notification.Engine, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, checker: checker, refs: refs, clk: clk, notif: notif, pool: pool}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// Create validates the booking, runs the conflict check when a dentist is
// assigned, and persists. The partial unique index on (dentist_id,
// start_time) backstops the check: a violation surfaces as a conflict, not
// an internal error.
func (s *Service) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = StatusPending
	} else if !ValidStatus(a.Status) {
		return nil, apperr.Validation("unknown status %q", a.Status).WithField("status", "must be pending, confirmed, completed, cancelled or rescheduled")
	}
	if a.NotifContent == nil {
		content, err := s.renderNotif(ctx, notification.EventBooked, a)
		if err != nil {
			return nil, err
		}
		a.NotifContent = &content
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.checker.Check(ctx, Candidate{
			DentistID: a.DentistID,
			Date:      a.AppointmentDate,
			Start:     a.StartTime,
			End:       a.EndTime,
		}); err != nil {
			return err
		}
		return s.repo.Create(ctx, a)
	})
	if db.UniqueViolation(err) {
		return nil, apperr.Conflict("schedule conflict detected")
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("unknown status %q", f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// UpdateInput is a partial appointment patch. Nil fields are left unchanged.
type UpdateInput struct {
	PatientID        *uuid.UUID      `json:"patient_id"`
	DentistID        *uuid.UUID      `json:"dentist_id"`
	AppointmentDate  *time.Time      `json:"appointment_date"`
	StartTime        *time.Time      `json:"start_time"`
	EndTime          *time.Time      `json:"end_time"`
	Notes            *string         `json:"notes"`
	NotifContent     *string         `json:"notif_content"`
	TreatmentOptions *[]string       `json:"treatment_options"`
	Status           *string         `json:"status"`
	BranchID         *uuid.UUID      `json:"clinic_branch_id"`
	DetailedNotes    json.RawMessage `json:"detailed_notes"`
}

// reschedulingChange reports whether the patch touches a field the conflict
// engine cares about.
func (in *UpdateInput) reschedulingChange() bool {
	return in.DentistID != nil || in.AppointmentDate != nil || in.StartTime != nil || in.EndTime != nil
}

// Update merges the patch into the stored appointment. The conflict check
// re-runs, excluding the row itself, only when dentist, date, start or end
// changed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *UpdateInput) (*Appointment, error) {
	err := s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		recheck := in.reschedulingChange()

		if in.PatientID != nil {
			a.PatientID = *in.PatientID
		}
		if in.DentistID != nil {
			a.DentistID = in.DentistID
		}
		if in.AppointmentDate != nil {
			a.AppointmentDate = *in.AppointmentDate
		}
		if in.StartTime != nil {
			a.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			a.EndTime = in.EndTime
		}
		if in.Notes != nil {
			a.Notes = in.Notes
		}
		if in.NotifContent != nil {
			a.NotifContent = in.NotifContent
		}
		if in.TreatmentOptions != nil {
			a.TreatmentOptions = *in.TreatmentOptions
		}
		if in.Status != nil {
			if !ValidStatus(*in.Status) {
				return apperr.Validation("unknown status %q", *in.Status)
			}
			a.Status = *in.Status
		}
		if in.BranchID != nil {
			a.BranchID = in.BranchID
		}
		if in.DetailedNotes != nil {
			a.DetailedNotes = in.DetailedNotes
		}

		if err := s.validate(ctx, a); err != nil {
			return err
		}
		if recheck {
			if err := s.checker.Check(ctx, Candidate{
				ExcludeID: a.ID,
				DentistID: a.DentistID,
				Date:      a.AppointmentDate,
				Start:     a.StartTime,
				End:       a.EndTime,
			}); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, a)
	})
	if db.UniqueViolation(err) {
		return nil, apperr.Conflict("schedule conflict detected")
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Confirm moves a pending or rescheduled appointment to confirmed and
// refreshes its notification content.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setStatus(ctx, id, StatusConfirmed, notification.EventConfirmed)
}

// Cancel moves a non-terminal appointment to cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setStatus(ctx, id, StatusCancelled, notification.EventCancelled)
}

// Complete marks a confirmed appointment as completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setStatus(ctx, id, StatusCompleted, "")
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, target string, event notification.Event) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(a.Status, target) {
		return nil, apperr.Validation("appointment is %s, cannot mark it %s", a.Status, target)
	}
	a.Status = target
	if event != "" {
		content, err := s.renderNotif(ctx, event, a)
		if err != nil {
			return nil, err
		}
		a.NotifContent = &content
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// ResetStatus returns an appointment to pending from any state. Transitions
// carry no memory of the prior status.
func (s *Service) ResetStatus(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = StatusPending
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Reschedule moves the appointment to a new interval. The conflict check
// re-runs against the new interval before the write commits.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate, newStart time.Time, newEnd *time.Time) (*Appointment, error) {
	if newDate.IsZero() || newStart.IsZero() {
		return nil, apperr.Validation("new_date and new_start_time are required")
	}
	if newEnd != nil && !newStart.Before(*newEnd) {
		return nil, apperr.Validation("new_start_time must be before new_end_time")
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checker.Check(ctx, Candidate{
			ExcludeID: a.ID,
			DentistID: a.DentistID,
			Date:      newDate,
			Start:     newStart,
			End:       newEnd,
		}); err != nil {
			return err
		}
		a.AppointmentDate = newDate
		a.StartTime = newStart
		a.EndTime = newEnd
		a.Status = StatusRescheduled
		content, err := s.renderNotif(ctx, notification.EventRescheduled, a)
		if err != nil {
			return err
		}
		a.NotifContent = &content
		return s.repo.Update(ctx, a)
	})
	if db.UniqueViolation(err) {
		return nil, apperr.Conflict("schedule conflict detected")
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// AssignDentist sets the dentist on an unassigned (or reassigned)
// appointment. The candidate interval is checked against the dentist's
// existing load before the write commits.
func (s *Service) AssignDentist(ctx context.Context, id, dentistID uuid.UUID) (*Appointment, error) {
	ok, err := s.refs.DentistExists(ctx, dentistID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("dentist %s not found", dentistID)
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checker.Check(ctx, Candidate{
			ExcludeID: a.ID,
			DentistID: &dentistID,
			Date:      a.AppointmentDate,
			Start:     a.StartTime,
			End:       a.EndTime,
		}); err != nil {
			return err
		}
		a.DentistID = &dentistID
		return s.repo.Update(ctx, a)
	})
	if db.UniqueViolation(err) {
		return nil, apperr.Conflict("schedule conflict detected")
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) validate(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return apperr.Validation("patient_id is required").WithField("patient_id", "required")
	}
	if a.ScheduledBy == uuid.Nil {
		return apperr.Validation("scheduled_by is required").WithField("scheduled_by", "required")
	}
	if a.AppointmentDate.IsZero() || a.StartTime.IsZero() {
		return apperr.Validation("appointment_date and start_time are required")
	}
	if a.EndTime != nil && !a.StartTime.Before(*a.EndTime) {
		return apperr.Validation("start_time must be before end_time")
	}

	patient, err := s.refs.GetUser(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if patient.Role != auth.RolePatient {
		return apperr.Validation("user %s is not a patient", a.PatientID)
	}
	if _, err := s.refs.GetUser(ctx, a.ScheduledBy); err != nil {
		return err
	}
	if a.DentistID != nil {
		ok, err := s.refs.DentistExists(ctx, *a.DentistID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("dentist %s not found", *a.DentistID)
		}
	}
	if a.BranchID != nil {
		ok, err := s.refs.BranchExists(ctx, *a.BranchID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("clinic branch %s not found", *a.BranchID)
		}
	}
	return nil
}

func (s *Service) renderNotif(ctx context.Context, event notification.Event, a *Appointment) (string, error) {
	d := notification.Data{StartCivil: s.clk.ToCivil(a.StartTime)}
	if patient, err := s.refs.GetUser(ctx, a.PatientID); err == nil {
		d.PatientName = patient.FullName()
	}
	if a.DentistID != nil {
		if dentist, err := s.refs.GetUser(ctx, *a.DentistID); err == nil {
			d.DentistName = dentist.FullName()
		}
	}
	return s.notif.Render(event, d)
}

// -- Available slot query --

type span struct{ start, end time.Time }

// AvailableSlots enumerates bookable windows of the given duration for a
// dentist on one civil calendar day. Weekly windows (minus breaks) and
// specific windows form the free set; leaves and existing bookings are
// subtracted from it.
func (s *Service) AvailableSlots(ctx context.Context, dentistID uuid.UUID, civilDate string, duration time.Duration) ([]Slot, error) {
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	day, err := time.ParseInLocation("2006-01-02", civilDate, s.clk.Location())
	if err != nil {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", civilDate)
	}
	dayStart := day.UTC()
	dayEnd := day.Add(24 * time.Hour).UTC()

	var free []span
	weekly, err := s.checker.avail.WeeklyForDay(ctx, dentistID, day.Weekday())
	if err != nil {
		return nil, err
	}
	for _, w := range weekly {
		ws, err := s.clk.CombineDateAndTime(day, w.StandardStartTime)
		if err != nil {
			return nil, err
		}
		we, err := s.clk.CombineDateAndTime(day, w.StandardEndTime)
		if err != nil {
			return nil, err
		}
		window := []span{{ws, we}}
		if w.BreakStartTime != nil && w.BreakEndTime != nil {
			bs, err := s.clk.CombineDateAndTime(day, *w.BreakStartTime)
			if err != nil {
				return nil, err
			}
			be, err := s.clk.CombineDateAndTime(day, *w.BreakEndTime)
			if err != nil {
				return nil, err
			}
			window = subtract(window, span{bs, be})
		}
		free = append(free, window...)
	}
	specifics, err := s.checker.avail.SpecificsOverlapping(ctx, dentistID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, sp := range specifics {
		free = append(free, clip(span{sp.StartDateTime, sp.EndDateTime}, dayStart, dayEnd))
	}

	leaves, err := s.checker.avail.LeavesOverlapping(ctx, dentistID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, l := range leaves {
		free = subtract(free, span{l.StartDateTime, l.EndDateTime})
	}
	booked, _, err := s.repo.List(ctx, Filter{
		DentistID: &dentistID,
		StartDate: &dayStart,
		EndDate:   &dayEnd,
	}, pagedAll, 0)
	if err != nil {
		return nil, err
	}
	for _, a := range booked {
		if a.Status == StatusCancelled {
			continue
		}
		start, end, bounded := a.Interval()
		if !bounded {
			end = dayEnd
		}
		free = subtract(free, span{start, end})
	}

	// Weekly and specific windows can cover the same time, so union the free
	// set before chopping it or overlapping spans would emit duplicate slots.
	free = mergeSpans(free)
	var slots []Slot
	for _, f := range free {
		for t := f.start; !t.Add(duration).After(f.end); t = t.Add(duration) {
			slots = append(slots, Slot{StartTime: t, EndTime: t.Add(duration)})
		}
	}
	return slots, nil
}

// pagedAll is a generous page size for the single-day booking query.
const pagedAll = 500

func clip(s span, lo, hi time.Time) span {
	if s.start.Before(lo) {
		s.start = lo
	}
	if s.end.After(hi) {
		s.end = hi
	}
	return s
}

// mergeSpans sorts spans by start and unions any pair that overlaps or
// touches.
func mergeSpans(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if !s.start.After(last.end) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// subtract removes busy from every span in free, splitting spans that
// contain it.
func subtract(free []span, busy span) []span {
	var out []span
	for _, f := range free {
		if !busy.start.Before(f.end) || !busy.end.After(f.start) {
			out = append(out, f)
			continue
		}
		if busy.start.After(f.start) {
			out = append(out, span{f.start, busy.start})
		}
		if busy.end.Before(f.end) {
			out = append(out, span{busy.end, f.end})
		}
	}
	return out
}
