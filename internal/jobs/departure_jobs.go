package jobs

import (
	"context"
	"fmt"

	"btevta-wasl-backend/internal/service"
)

// CheckPostDepartureCompliance classifies every departed candidate against the
// compliance window.
func (jr *JobRunner) CheckPostDepartureCompliance(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobCheckPostDepartureCompliance, func(ctx context.Context, report *SweepReport) error {
		departures, err := jr.sources.Departures.ListDeparted(ctx)
		if err != nil {
			return fmt.Errorf("list departures: %w", err)
		}

		for i := range departures {
			dep := &departures[i]
			report.Scanned++
			var res *service.ComplianceCheck
			if !report.step("departure", dep.ID, func() (err error) {
				res, err = jr.services.Compliance.CheckCompliance(ctx, dep)
				return err
			}) {
				continue
			}
			switch {
			case res.Skipped:
				report.Skipped++
			case res.Changed:
				report.Changed++
			}
			if res.Notified {
				report.Notified++
			}
		}
		return nil
	})
}

// SendSalaryVerificationReminders sends a reminder each time a departure's salary
// verification reminder severity rises.
func (jr *JobRunner) SendSalaryVerificationReminders(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobSendSalaryVerificationReminder, func(ctx context.Context, report *SweepReport) error {
		departures, err := jr.sources.Departures.ListDeparted(ctx)
		if err != nil {
			return fmt.Errorf("list departures: %w", err)
		}

		for i := range departures {
			dep := &departures[i]
			if dep.SalaryConfirmed {
				continue
			}
			report.Scanned++
			var sent bool
			if !report.step("departure", dep.ID, func() (err error) {
				_, sent, err = jr.services.Compliance.SendSalaryReminder(ctx, dep)
				return err
			}) {
				continue
			}
			if sent {
				report.Changed++
				report.Notified++
			}
		}
		return nil
	})
}

// CheckRemittanceAlerts raises and auto-resolves remittance alerts for departed candidates.
func (jr *JobRunner) CheckRemittanceAlerts(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobCheckRemittanceAlerts, func(ctx context.Context, report *SweepReport) error {
		departures, err := jr.sources.Departures.ListDeparted(ctx)
		if err != nil {
			return fmt.Errorf("list departures: %w", err)
		}

		for i := range departures {
			dep := &departures[i]
			report.Scanned++
			var res *service.AlertReconciliation
			if !report.step("candidate", dep.CandidateID, func() (err error) {
				res, err = jr.services.Remittance.CheckAlerts(ctx, dep)
				return err
			}) {
				continue
			}
			report.Changed += len(res.Created) + len(res.Resolved)
		}
		return nil
	})
}
