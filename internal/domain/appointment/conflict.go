package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentica/dentica/internal/domain/availability"
	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/clock"
)

// AvailabilityReader is the slice of the availability service the conflict
// engine needs.
type AvailabilityReader interface {
	WeeklyForDay(ctx context.Context, dentistID uuid.UUID, day time.Weekday) ([]*availability.Weekly, error)
	SpecificsOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*availability.Specific, error)
	LeavesOverlapping(ctx context.Context, dentistID uuid.UUID, from, to time.Time) ([]*availability.Leave, error)
}

// Candidate is a proposed booking interval for a dentist. ExcludeID carries
// the appointment's own id when re-checking an update so the row does not
// collide with itself.
type Candidate struct {
	ExcludeID uuid.UUID
	DentistID *uuid.UUID
	Date      time.Time
	Start     time.Time
	End       *time.Time
}

// Checker decides whether a candidate booking is legal given the dentist's
// existing appointments, leave periods and availability windows. It only
// reads; callers run it inside the same transaction as the write.
type Checker struct {
	repo  Repository
	avail AvailabilityReader
	clk   *clock.Clock
}

func NewChecker(repo Repository, avail AvailabilityReader, clk *clock.Clock) *Checker {
	return &Checker{repo: repo, avail: avail, clk: clk}
}

// Check returns nil when the booking may proceed. Unassigned candidates are
// always acceptable: conflict detection is deferred until a dentist is
// assigned.
func (ch *Checker) Check(ctx context.Context, cand Candidate) error {
	if cand.DentistID == nil {
		return nil
	}
	dentistID := *cand.DentistID

	if err := ch.checkBookings(ctx, dentistID, cand); err != nil {
		return err
	}
	if err := ch.checkLeave(ctx, dentistID, cand); err != nil {
		return err
	}
	return ch.checkAvailability(ctx, dentistID, cand)
}

// checkBookings rejects candidates whose interval intersects another live
// appointment of the same dentist on the same appointment_date instant.
// Cancelled rows do not block. Intervals are half-open, so back-to-back
// bookings sharing an endpoint are allowed. A missing end on either side is
// treated as unbounded.
func (ch *Checker) checkBookings(ctx context.Context, dentistID uuid.UUID, cand Candidate) error {
	existing, err := ch.repo.ListByDentistAndDate(ctx, dentistID, cand.Date)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == cand.ExcludeID || other.Status == StatusCancelled {
			continue
		}
		if intervalsOverlap(other.StartTime, other.EndTime, cand.Start, cand.End) {
			return apperr.Conflict("schedule conflict detected: overlaps appointment %s", other.ID)
		}
	}
	return nil
}

// checkLeave rejects candidates intersecting any leave period of the dentist.
func (ch *Checker) checkLeave(ctx context.Context, dentistID uuid.UUID, cand Candidate) error {
	from, to := cand.Start, candidateEnd(cand)
	leaves, err := ch.avail.LeavesOverlapping(ctx, dentistID, from, to)
	if err != nil {
		return err
	}
	if len(leaves) > 0 {
		return apperr.Conflict("schedule conflict detected: dentist is on leave")
	}
	return nil
}

// checkAvailability requires the candidate to fall inside at least one
// effective window: either a specific availability window containing the
// whole interval, or a weekly window for that civil weekday whose standard
// hours contain it without touching the break.
func (ch *Checker) checkAvailability(ctx context.Context, dentistID uuid.UUID, cand Candidate) error {
	from, to := cand.Start, candidateEnd(cand)

	specifics, err := ch.avail.SpecificsOverlapping(ctx, dentistID, from, to)
	if err != nil {
		return err
	}
	for _, sp := range specifics {
		if !sp.StartDateTime.After(from) && !sp.EndDateTime.Before(to) {
			return nil
		}
	}

	startMin := ch.clk.MinutesIntoDay(cand.Start)
	// An open-ended candidate occupies at least the minute it starts in, so a
	// start sitting exactly on a window's end is outside the window.
	endMin := startMin + 1
	if cand.End != nil {
		endMin = ch.clk.MinutesIntoDay(*cand.End)
		// An end at civil midnight means the booking runs to end of day.
		if endMin == 0 && cand.End.After(cand.Start) {
			endMin = 24 * 60
		}
	}

	weekly, err := ch.avail.WeeklyForDay(ctx, dentistID, ch.clk.Weekday(cand.Start))
	if err != nil {
		return err
	}
	insideBreak := false
	for _, w := range weekly {
		ws, we, err := w.Window()
		if err != nil {
			return err
		}
		if startMin < ws || endMin > we {
			continue
		}
		bs, be, hasBreak, err := w.Break()
		if err != nil {
			return err
		}
		if hasBreak && startMin < be && endMin > bs {
			insideBreak = true
			continue
		}
		return nil
	}
	if insideBreak {
		return apperr.Conflict("schedule conflict detected: requested time falls inside a break")
	}
	return apperr.Conflict("schedule conflict detected: dentist has no availability for the requested time")
}

// candidateEnd returns the interval end used for leave and availability
// containment. An open-ended candidate is widened to a point just past its
// start so the half-open overlap queries still catch windows and leaves
// beginning exactly at that instant.
func candidateEnd(cand Candidate) time.Time {
	if cand.End != nil {
		return *cand.End
	}
	return cand.Start.Add(time.Nanosecond)
}

// intervalsOverlap applies the half-open overlap rule. A nil end on either
// interval is unbounded.
func intervalsOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && !aEnd.After(bStart) {
		return false
	}
	if bEnd != nil && !bEnd.After(aStart) {
		return false
	}
	return true
}
