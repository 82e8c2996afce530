package appointment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dentica/dentica/internal/domain/identity"
)

// Appointment statuses.
const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// transitions lists the statuses each operation may move away from.
// reset-status is intentionally absent: it returns to pending from any state.
var transitions = map[string][]string{
	StatusConfirmed: {StatusPending, StatusRescheduled},
	StatusCompleted: {StatusConfirmed},
	StatusCancelled: {StatusPending, StatusConfirmed, StatusRescheduled},
}

// canTransition reports whether an appointment currently in from may be
// moved to target.
func canTransition(from, target string) bool {
	allowed, ok := transitions[target]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == from {
			return true
		}
	}
	return false
}

// Appointment is a scheduled patient visit. AppointmentDate, StartTime and
// EndTime are UTC instants; AppointmentDate identifies the booking day and is
// compared by exact instant equality, not as a calendar-day range.
// DentistID is nullable: appointments may be created unassigned and a
// dentist assigned later. DetailedNotes is an opaque clinical-intake blob
// stored and returned verbatim.
type Appointment struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	PatientID        uuid.UUID       `db:"patient_id" json:"patient_id"`
	DentistID        *uuid.UUID      `db:"dentist_id" json:"dentist_id,omitempty"`
	ScheduledBy      uuid.UUID       `db:"scheduled_by" json:"scheduled_by"`
	AppointmentDate  time.Time       `db:"appointment_date" json:"appointment_date"`
	StartTime        time.Time       `db:"start_time" json:"start_time"`
	EndTime          *time.Time      `db:"end_time" json:"end_time,omitempty"`
	Notes            *string         `db:"notes" json:"notes,omitempty"`
	NotifContent     *string         `db:"notif_content" json:"notif_content,omitempty"`
	TreatmentOptions []string        `db:"treatment_options" json:"treatment_options"`
	Status           string          `db:"status" json:"status"`
	BranchID         *uuid.UUID      `db:"clinic_branch_id" json:"clinic_branch_id,omitempty"`
	DetailedNotes    json.RawMessage `db:"detailed_notes" json:"detailed_notes,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`

	// Joined for responses, not persisted on this row.
	Patient         *identity.Summary `db:"-" json:"patient,omitempty"`
	Dentist         *identity.Summary `db:"-" json:"dentist,omitempty"`
	ScheduledByUser *identity.Summary `db:"-" json:"scheduled_by_user,omitempty"`
}

// Interval returns the booked span with a half-open reading: ok is false
// when the appointment has no end instant.
func (a *Appointment) Interval() (start, end time.Time, ok bool) {
	if a.EndTime == nil {
		return a.StartTime, time.Time{}, false
	}
	return a.StartTime, *a.EndTime, true
}

// Filter narrows appointment list queries. Zero-value fields are ignored.
type Filter struct {
	PatientID *uuid.UUID
	DentistID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
}

// Slot is one bookable window returned by the availability slot query.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
