/*
capacity.go - Overlap and medical-leave capacity guards

PURPOSE:
  Two gates every new request passes before entering the approval workflow:

  1. CheckOverlap: no two live requests for the same person may occupy
     intersecting date ranges. Rejected and cancelled requests have released
     their range and are ignored.

  2. CheckMedicalBlock: while an ACTIVE medical leave with
     affects_team_capacity covers the submission date, the person (or, in
     the manager-scoped variant, anyone on the team) cannot submit new
     non-medical requests. Ending the leave lifts the block immediately;
     requests already past this gate are never retroactively affected.

Both checks are pure functions over read-only snapshots.
*/
package leave

// CheckOverlap validates a candidate range against the person's existing
// requests. Ranges conflict when start <= other.end && end >= other.start.
// Returns an OverlapConflictError listing every conflicting request id.
func CheckOverlap(personID string, start, end LocalDate, existing []LeaveRequest) error {
	if end.Before(start) {
		return ErrDateRangeInvalid
	}
	var conflicts []string
	for i := range existing {
		r := &existing[i]
		if r.RequesterID != personID || r.Status.IsTerminalNegative() {
			continue
		}
		if r.Overlaps(start, end) {
			conflicts = append(conflicts, r.ID)
		}
	}
	if len(conflicts) > 0 {
		return &OverlapConflictError{PersonID: personID, Start: start, End: end, ConflictIDs: conflicts}
	}
	return nil
}

// CheckMedicalBlock reports whether the person is blocked from submitting a
// new non-medical request on submittedOn. leaves is the current snapshot of
// the person's medical leaves.
func CheckMedicalBlock(personID string, submittedOn LocalDate, leaves []MedicalLeave) error {
	for i := range leaves {
		m := &leaves[i]
		if m.PersonID != personID {
			continue
		}
		if m.BlocksOn(submittedOn) {
			return &CapacityBlockedError{
				PersonID:       personID,
				MedicalLeaveID: m.ID,
				Until:          m.EndDate,
			}
		}
	}
	return nil
}

// CheckTeamMedicalBlock is the manager-scoped variant: the team is blocked
// when any member has a capacity-affecting active medical leave covering
// submittedOn. memberIDs is the resolved team roster.
func CheckTeamMedicalBlock(memberIDs []string, submittedOn LocalDate, leaves []MedicalLeave) error {
	for _, id := range memberIDs {
		if err := CheckMedicalBlock(id, submittedOn, leaves); err != nil {
			return err
		}
	}
	return nil
}
