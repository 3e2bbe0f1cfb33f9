package sla

import (
	"time"

	"btevta-wasl-backend/internal/domain"
)

// VisaOverdue reports whether an incomplete visa process is past its expected completion
// date, and by how many whole days.
func VisaOverdue(v domain.VisaProcess, now time.Time) (bool, int) {
	if v.IsComplete() || v.ExpectedCompletionDate == nil || !now.After(*v.ExpectedCompletionDate) {
		return false, 0
	}
	return true, wholeDays(now.Sub(*v.ExpectedCompletionDate))
}

// DocumentExpiring reports whether doc needs its one expiry warning at now. Already
// expired documents that were never warned about are included.
func (p Policy) DocumentExpiring(doc domain.UploadedDocument, now time.Time) (bool, int) {
	if doc.ExpiryDate == nil || doc.ExpiryNotifiedAt != nil {
		return false, 0
	}
	left := doc.ExpiryDate.Sub(now)
	if left > time.Duration(p.DocumentExpiryWarningDays)*day {
		return false, 0
	}
	return true, wholeDays(left)
}

// ScreeningReminderDue reports whether a pending call screening should be followed up.
func (p Policy) ScreeningReminderDue(r domain.ScreeningRecord, now time.Time) bool {
	if r.Type != domain.ScreeningTypeCall {
		return false
	}
	if r.Status != domain.ScreeningStatusPending && r.Status != domain.ScreeningStatusDeferred {
		return false
	}
	if r.CallCount >= domain.MaxScreeningCallAttempts {
		return false
	}
	last := r.CreatedAt
	if r.LastCallAt != nil {
		last = *r.LastCallAt
	}
	if now.Sub(last) < p.ScreeningRetryInterval {
		return false
	}
	return r.RemindedAt == nil || now.Sub(*r.RemindedAt) >= p.ScreeningRetryInterval
}
