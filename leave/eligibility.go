/*
eligibility.go - Birthday day-off eligibility

PURPOSE:
  Decides whether a day-off request is currently allowed for a person.
  The day-off is a single-day birthday-linked benefit, separate from
  vacation: one per cycle, taken inside a window tied to the birth month.

WINDOW RULE:
  The window opens on the first day of the birth month in the current year
  and closes the day before the next birthday (realized in the following
  year) - regardless of which side of the birth month today falls on.
  Example: birth 1990-06-15, today 2025-06-01 -> window [2025-06-01,
  2026-06-14]; a request for 2025-05-31 is outside it.

DIRECTOR BYPASS:
  Directors skip every check and are always eligible. This is stated
  policy, not an oversight.

This evaluator is pure and side-effect-free.
*/
package leave

// Eligibility is the result of a day-off evaluation. Reason is nil when
// Allowed; Window is populated whenever a birth date was available.
type Eligibility struct {
	Allowed bool
	Reason  error
	Window  *DateWindow
}

// DayOffInput is the per-call snapshot the evaluator works from. Today is
// passed explicitly so the evaluator stays pure and testable.
type DayOffInput struct {
	BirthDate           *LocalDate
	AlreadyUsedThisYear bool
	IsDirector          bool
	Today               LocalDate
	RequestedDate       LocalDate
}

// EvaluateDayOff applies the day-off rules to a request snapshot.
func EvaluateDayOff(in DayOffInput) Eligibility {
	if in.IsDirector {
		return Eligibility{Allowed: true}
	}
	if in.BirthDate == nil {
		return Eligibility{Reason: ErrMissingBirthDate}
	}
	window := BirthdayWindow(*in.BirthDate, in.Today)
	if in.AlreadyUsedThisYear {
		return Eligibility{Reason: ErrAlreadyUsedThisYear, Window: &window}
	}
	if !window.Contains(in.RequestedDate) {
		return Eligibility{
			Reason: &OutsideWindowError{Requested: in.RequestedDate, Window: window},
			Window: &window,
		}
	}
	return Eligibility{Allowed: true, Window: &window}
}
