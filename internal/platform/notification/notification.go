// Package notification generates patient-facing message content for
// appointment events. It only renders text; delivery (SMS/email) is owned by
// an external system that reads the stored content.
package notification

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Event identifies which appointment event a message describes.
type Event string

const (
	EventBooked      Event = "appointment.booked"
	EventConfirmed   Event = "appointment.confirmed"
	EventCancelled   Event = "appointment.cancelled"
	EventRescheduled Event = "appointment.rescheduled"
	EventReminder    Event = "appointment.reminder"
)

// Template defines a reusable message template. Placeholders use the
// {{name}} form.
type Template struct {
	Event   Event
	Subject string
	Body    string
}

// Engine renders registered templates with per-appointment data.
type Engine struct {
	mu        sync.RWMutex
	templates map[Event]*Template
}

// NewEngine creates an Engine with the built-in clinic templates registered.
func NewEngine() *Engine {
	e := &Engine{templates: make(map[Event]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *Engine) registerBuiltIn() {
	builtIn := []*Template{
		{
			Event:   EventBooked,
			Subject: "Appointment request received",
			Body:    "Hi {{patient_name}}, we received your appointment request for {{date}} at {{time}}. Our staff will confirm it shortly.",
		},
		{
			Event:   EventConfirmed,
			Subject: "Appointment confirmed",
			Body:    "Hi {{patient_name}}, your dental appointment on {{date}} at {{time}}{{with_dentist}} is confirmed. Please arrive 10 minutes early.",
		},
		{
			Event:   EventCancelled,
			Subject: "Appointment cancelled",
			Body:    "Hi {{patient_name}}, your appointment on {{date}} at {{time}} has been cancelled. Contact the clinic to rebook.",
		},
		{
			Event:   EventRescheduled,
			Subject: "Appointment rescheduled",
			Body:    "Hi {{patient_name}}, your appointment has been moved to {{date}} at {{time}}{{with_dentist}}.",
		},
		{
			Event:   EventReminder,
			Subject: "Appointment reminder",
			Body:    "Hi {{patient_name}}, this is a reminder of your dental appointment on {{date}} at {{time}}{{with_dentist}}.",
		},
	}
	for _, t := range builtIn {
		e.templates[t.Event] = t
	}
}

// Register adds or replaces a template.
func (e *Engine) Register(t *Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.Event] = t
}

// Data carries the values substituted into a template.
type Data struct {
	PatientName string
	DentistName string
	StartCivil  time.Time
}

// Render produces the message body for an event. Unknown events return an
// error rather than silently producing empty content.
func (e *Engine) Render(event Event, d Data) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[event]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no template registered for event %q", event)
	}

	withDentist := ""
	if d.DentistName != "" {
		withDentist = " with Dr. " + d.DentistName
	}

	r := strings.NewReplacer(
		"{{patient_name}}", d.PatientName,
		"{{date}}", d.StartCivil.Format("January 2, 2006"),
		"{{time}}", d.StartCivil.Format("3:04 PM"),
		"{{with_dentist}}", withDentist,
	)
	return r.Replace(t.Body), nil
}
