package plan

// TimesOverlap returns true if two half-open time ranges overlap.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
// "HH:MM" strings compare correctly as text, "24:00" included.
func TimesOverlap(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

// FindOverlap returns the first session in existing that collides with
// candidate, or nil. Sessions on another date or owner are skipped, as is the
// session with id excludeID (use 0 to exclude nothing). An owner of 0 on
// either side matches any owner.
func FindOverlap(existing []*Session, candidate *Session, excludeID int64) *Session {
	if candidate == nil {
		return nil
	}
	for _, s := range existing {
		if s == nil {
			continue
		}
		if excludeID != 0 && s.ID == excludeID {
			continue
		}
		if s.Date != candidate.Date || !sameOwner(s.OwnerID, candidate.OwnerID) {
			continue
		}
		if TimesOverlap(s.StartTime, s.EndTime, candidate.StartTime, candidate.EndTime) {
			return s
		}
	}
	return nil
}

// HasOverlap reports whether candidate collides with any session in existing.
func HasOverlap(existing []*Session, candidate *Session, excludeID int64) bool {
	return FindOverlap(existing, candidate, excludeID) != nil
}

// CheckOverlap is HasOverlap returning an *OverlapError naming the conflict.
func CheckOverlap(existing []*Session, candidate *Session, excludeID int64) error {
	if c := FindOverlap(existing, candidate, excludeID); c != nil {
		return &OverlapError{Conflict: c}
	}
	return nil
}

func sameOwner(a, b int64) bool {
	return a == 0 || b == 0 || a == b
}
