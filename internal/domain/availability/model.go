package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentica/dentica/internal/platform/apperr"
	"github.com/dentica/dentica/internal/platform/clock"
)

// DayOfWeek is the recurring weekday of a Weekly record, stored lowercase.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var dayToWeekday = map[DayOfWeek]time.Weekday{
	Monday: time.Monday, Tuesday: time.Tuesday, Wednesday: time.Wednesday,
	Thursday: time.Thursday, Friday: time.Friday, Saturday: time.Saturday,
	Sunday: time.Sunday,
}

// Valid reports whether d names a weekday.
func (d DayOfWeek) Valid() bool {
	_, ok := dayToWeekday[d]
	return ok
}

// Weekday converts d to the stdlib weekday.
func (d DayOfWeek) Weekday() time.Weekday {
	return dayToWeekday[d]
}

// FromWeekday converts a stdlib weekday to a DayOfWeek.
func FromWeekday(w time.Weekday) DayOfWeek {
	switch w {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Weekly maps to the weekly_availability table: a recurring weekly window
// during which a dentist is bookable at a branch. Times are civil "HH:MM"
// strings, not instants; the window recurs every week indefinitely.
type Weekly struct {
	ID                uuid.UUID `db:"id" json:"id"`
	DentistID         uuid.UUID `db:"dentist_id" json:"dentist_id"`
	DayOfWeek         DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StandardStartTime string    `db:"standard_start_time" json:"standard_start_time"`
	StandardEndTime   string    `db:"standard_end_time" json:"standard_end_time"`
	BreakStartTime    *string   `db:"break_start_time" json:"break_start_time,omitempty"`
	BreakEndTime      *string   `db:"break_end_time" json:"break_end_time,omitempty"`
	BranchID          uuid.UUID `db:"clinic_branch_id" json:"clinic_branch_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Window returns the standard hours as minutes since midnight. Records are
// validated on write, so a parse failure here means corrupted data.
func (w *Weekly) Window() (start, end clock.TimeOfDay, err error) {
	start, err = clock.ParseTimeOfDay(w.StandardStartTime)
	if err != nil {
		return 0, 0, apperr.Internal("weekly availability %s has malformed start time", w.ID).WithCause(err)
	}
	end, err = clock.ParseTimeOfDay(w.StandardEndTime)
	if err != nil {
		return 0, 0, apperr.Internal("weekly availability %s has malformed end time", w.ID).WithCause(err)
	}
	return start, end, nil
}

// Break returns the break interval in minutes since midnight, or ok=false
// when no break is set.
func (w *Weekly) Break() (start, end clock.TimeOfDay, ok bool, err error) {
	if w.BreakStartTime == nil || w.BreakEndTime == nil {
		return 0, 0, false, nil
	}
	start, err = clock.ParseTimeOfDay(*w.BreakStartTime)
	if err != nil {
		return 0, 0, false, apperr.Internal("weekly availability %s has malformed break start", w.ID).WithCause(err)
	}
	end, err = clock.ParseTimeOfDay(*w.BreakEndTime)
	if err != nil {
		return 0, 0, false, apperr.Internal("weekly availability %s has malformed break end", w.ID).WithCause(err)
	}
	return start, end, true, nil
}

// Specific maps to the specific_availability table: a one-off UTC window
// overriding the weekly pattern for a single date.
type Specific struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	DentistID     uuid.UUID  `db:"dentist_id" json:"dentist_id"`
	StartDateTime time.Time  `db:"start_datetime" json:"start_datetime"`
	EndDateTime   time.Time  `db:"end_datetime" json:"end_datetime"`
	BranchID      *uuid.UUID `db:"clinic_branch_id" json:"clinic_branch_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Leave maps to the dentist_leave table: a UTC window during which the
// dentist is fully unavailable regardless of any availability records.
type Leave struct {
	ID            uuid.UUID `db:"id" json:"id"`
	DentistID     uuid.UUID `db:"dentist_id" json:"dentist_id"`
	StartDateTime time.Time `db:"start_datetime" json:"start_datetime"`
	EndDateTime   time.Time `db:"end_datetime" json:"end_datetime"`
	Reason        *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
