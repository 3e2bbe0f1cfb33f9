package jobs

import (
	"context"
	"fmt"
	"time"
)

// SendDocumentExpiryWarnings warns once about each document inside the expiry window.
func (jr *JobRunner) SendDocumentExpiryWarnings(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobSendDocumentExpiryWarnings, func(ctx context.Context, report *SweepReport) error {
		window := time.Duration(jr.config.Documents.ExpiryWarningDays) * 24 * time.Hour
		docs, err := jr.sources.Documents.ListUnnotifiedExpiring(ctx, jr.clock.Now().Add(window))
		if err != nil {
			return fmt.Errorf("list expiring documents: %w", err)
		}

		for i := range docs {
			doc := &docs[i]
			report.Scanned++
			var sent bool
			if !report.step("document", doc.ID, func() (err error) {
				sent, err = jr.services.Reminders.WarnDocumentExpiry(ctx, doc)
				return err
			}) {
				continue
			}
			if sent {
				report.Notified++
			} else {
				report.Skipped++
			}
		}
		return nil
	})
}

// SendScreeningReminders follows up pending call screenings with attempts remaining.
func (jr *JobRunner) SendScreeningReminders(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobSendScreeningReminders, func(ctx context.Context, report *SweepReport) error {
		records, err := jr.sources.Screenings.ListPendingCalls(ctx)
		if err != nil {
			return fmt.Errorf("list pending call screenings: %w", err)
		}

		for i := range records {
			rec := &records[i]
			report.Scanned++
			var sent bool
			if !report.step("screening", rec.ID, func() (err error) {
				sent, err = jr.services.Reminders.RemindScreening(ctx, rec)
				return err
			}) {
				continue
			}
			if sent {
				report.Notified++
			} else {
				report.Skipped++
			}
		}
		return nil
	})
}
