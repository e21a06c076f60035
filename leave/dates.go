/*
dates.go - Calendar arithmetic for the leave engine

PURPOSE:
  All date handling in one place: the day-granular LocalDate type, safe
  parsing of ISO and BR-formatted (dd/mm/yyyy) strings, input masking for
  BR strings, birthday eligibility windows, and year clipping for accrual.

WHY A LOCAL DATE TYPE:
  Leave requests are whole calendar days. time.Time carries clock and zone
  information that has repeatedly caused off-by-one bugs at midnight
  boundaries, so the engine normalizes everything to UTC midnight and only
  compares at day granularity.

BR DATE STRINGS:
  HR staff type dates as "dd/mm/yyyy". MaskBRDate progressively formats raw
  digit input ("15061990" -> "15/06/1990") so UI collaborators can reuse the
  same rule; ParseBRDate validates the final string.

SEE ALSO:
  - eligibility.go: BirthdayWindow consumer
  - accrual.go: anniversary and year-clipping consumer
*/
package leave

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// LOCAL DATE - Day-granularity calendar date (UTC midnight internally)
// =============================================================================

type LocalDate struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) LocalDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() LocalDate { return DateOf(time.Now()) }

// Comparison
func (d LocalDate) Before(o LocalDate) bool        { return d.t.Before(o.t) }
func (d LocalDate) After(o LocalDate) bool         { return d.t.After(o.t) }
func (d LocalDate) Equal(o LocalDate) bool         { return d.t.Equal(o.t) }
func (d LocalDate) BeforeOrEqual(o LocalDate) bool { return !d.t.After(o.t) }
func (d LocalDate) AfterOrEqual(o LocalDate) bool  { return !d.t.Before(o.t) }
func (d LocalDate) IsZero() bool                   { return d.t.IsZero() }

// Arithmetic
func (d LocalDate) AddDays(n int) LocalDate   { return LocalDate{t: d.t.AddDate(0, 0, n)} }
func (d LocalDate) AddMonths(n int) LocalDate { return LocalDate{t: d.t.AddDate(0, n, 0)} }
func (d LocalDate) AddYears(n int) LocalDate  { return LocalDate{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d LocalDate) Year() int         { return d.t.Year() }
func (d LocalDate) Month() time.Month { return d.t.Month() }
func (d LocalDate) Day() int          { return d.t.Day() }
func (d LocalDate) Time() time.Time   { return d.t }

func (d LocalDate) String() string { return d.t.Format("2006-01-02") }

func (d LocalDate) Min(o LocalDate) LocalDate {
	if d.Before(o) {
		return d
	}
	return o
}

func (d LocalDate) Max(o LocalDate) LocalDate {
	if d.After(o) {
		return d
	}
	return o
}

// DaysInclusive counts both endpoints: Jan 10..Jan 15 is 6 days.
func DaysInclusive(from, to LocalDate) int {
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

func StartOfYear(year int) LocalDate { return NewDate(year, time.January, 1) }
func EndOfYear(year int) LocalDate   { return NewDate(year, time.December, 31) }

// =============================================================================
// PARSING AND BR MASKING
// =============================================================================

// ParseLocalDate parses an ISO "2006-01-02" string.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseBRDate parses a "dd/mm/yyyy" string.
func ParseBRDate(s string) (LocalDate, error) {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MaskBRDate formats raw digit input progressively as dd/mm/yyyy.
// Non-digits are stripped first, input beyond 8 digits is ignored.
func MaskBRDate(raw string) string {
	var digits []byte
	for i := 0; i < len(raw) && len(digits) < 8; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	switch {
	case len(digits) <= 2:
		return string(digits)
	case len(digits) <= 4:
		return string(digits[:2]) + "/" + string(digits[2:])
	default:
		return string(digits[:2]) + "/" + string(digits[2:4]) + "/" + string(digits[4:])
	}
}

// ValidBRDate reports whether s is a complete, real dd/mm/yyyy date.
func ValidBRDate(s string) bool {
	_, err := ParseBRDate(s)
	return err == nil
}

// =============================================================================
// DOMAIN CALENDAR RULES
// =============================================================================

// RealizeAnniversary places the month/day of ref into the given year.
// Feb 29 anniversaries fall on Feb 28 in non-leap years.
func RealizeAnniversary(ref LocalDate, year int) LocalDate {
	month, day := ref.Month(), ref.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return NewDate(year, month, day)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DateWindow is an inclusive date range.
type DateWindow struct {
	Start LocalDate
	End   LocalDate
}

func (w DateWindow) Contains(d LocalDate) bool {
	return w.Start.BeforeOrEqual(d) && d.BeforeOrEqual(w.End)
}

// BirthdayWindow computes the day-off eligibility window for a birth date.
// The window opens on the first day of the birth month in today's year and
// closes the day before the birthday realized in the following year,
// regardless of which side of the birth month today falls on.
func BirthdayWindow(birth, today LocalDate) DateWindow {
	start := NewDate(today.Year(), birth.Month(), 1)
	end := RealizeAnniversary(birth, today.Year()+1).AddDays(-1)
	return DateWindow{Start: start, End: end}
}

// ClipToYear narrows [start, end] to the given calendar year.
// Returns ok=false when the range does not intersect the year at all.
func ClipToYear(start, end LocalDate, year int) (LocalDate, LocalDate, bool) {
	ys, ye := StartOfYear(year), EndOfYear(year)
	if end.Before(ys) || start.After(ye) {
		return LocalDate{}, LocalDate{}, false
	}
	return start.Max(ys), end.Min(ye), true
}

// CompleteMonthsBetween counts whole months elapsed from `from` to `until`.
// A month completes when the same day-of-month is reached again (the 31st
// completing on a shorter month's last day counts as complete).
func CompleteMonthsBetween(from, until LocalDate) int {
	if until.Before(from) {
		return 0
	}
	months := (until.Year()-from.Year())*12 + int(until.Month()) - int(from.Month())
	if months == 0 {
		return 0
	}
	// Back off when the day-of-month has not come around yet, unless the
	// shorter month ended before the reference day could exist.
	if until.Day() < from.Day() && !isLastDayOfMonth(until) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func isLastDayOfMonth(d LocalDate) bool {
	return d.AddDays(1).Month() != d.Month()
}
