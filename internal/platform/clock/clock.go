// Package clock is the single source of truth for converting between the
// clinic's civil wall-clock time and the UTC instants used for storage and
// comparison. The civil zone is injected from configuration, never read from
// a package-level global.
package clock

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dentica/dentica/internal/platform/apperr"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// TimeOfDay is a civil "HH:MM" value expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string. Hours may be one or two digits.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, apperr.Validation("invalid time of day %q, expected HH:MM", s)
	}
	var h, min int
	fmt.Sscanf(m[1], "%d", &h)
	fmt.Sscanf(m[2], "%d", &min)
	return TimeOfDay(h*60 + min), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Clock converts between the clinic's civil timezone and UTC.
type Clock struct {
	loc *time.Location
}

func New(loc *time.Location) *Clock {
	return &Clock{loc: loc}
}

// Location returns the clinic's civil timezone.
func (c *Clock) Location() *time.Location { return c.loc }

// ToUTC reinterprets the wall-clock components of t as civil time in the
// clinic zone and returns the corresponding UTC instant.
func (c *Clock) ToUTC(civil time.Time) time.Time {
	return time.Date(civil.Year(), civil.Month(), civil.Day(),
		civil.Hour(), civil.Minute(), civil.Second(), civil.Nanosecond(), c.loc).UTC()
}

// ToCivil returns the civil-zone representation of a UTC instant.
func (c *Clock) ToCivil(utc time.Time) time.Time {
	return utc.In(c.loc)
}

// CombineDateAndTime takes a date's own local year/month/day components (not
// its UTC rendering, which could shift the calendar day when the value
// carries a different offset), attaches the given "HH:MM" civil time in the
// clinic zone, and returns the resulting UTC instant.
func (c *Clock) CombineDateAndTime(date time.Time, hhmm string) (time.Time, error) {
	tod, err := ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, int(tod)/60, int(tod)%60, 0, 0, c.loc).UTC(), nil
}

// CivilMidnight returns the UTC instant of midnight, clinic time, on the
// calendar day containing the given UTC instant.
func (c *Clock) CivilMidnight(utc time.Time) time.Time {
	civil := utc.In(c.loc)
	y, m, d := civil.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc).UTC()
}

// MinutesIntoDay returns how many minutes past civil midnight the given UTC
// instant falls.
func (c *Clock) MinutesIntoDay(utc time.Time) TimeOfDay {
	civil := utc.In(c.loc)
	return TimeOfDay(civil.Hour()*60 + civil.Minute())
}

// Weekday returns the civil weekday of a UTC instant.
func (c *Clock) Weekday(utc time.Time) time.Weekday {
	return utc.In(c.loc).Weekday()
}
