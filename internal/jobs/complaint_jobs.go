package jobs

import (
	"context"
	"fmt"

	"btevta-wasl-backend/internal/service"
)

// EvaluateComplaintSLAs records first breaches and applies automatic escalation for
// every open complaint.
func (jr *JobRunner) EvaluateComplaintSLAs(ctx context.Context) *SweepReport {
	return jr.runWithRecovery(ctx, JobEvaluateComplaintSLAs, func(ctx context.Context, report *SweepReport) error {
		complaints, err := jr.sources.Complaints.ListOpen(ctx)
		if err != nil {
			return fmt.Errorf("list open complaints: %w", err)
		}

		for i := range complaints {
			c := &complaints[i]
			report.Scanned++
			var res *service.ComplaintSLA
			if !report.step("complaint", c.ID, func() (err error) {
				res, err = jr.services.Complaints.Tick(ctx, c)
				return err
			}) {
				continue
			}
			if res.NewlyBreached {
				report.Changed++
				report.Notified++
			}
			if res.Escalation != nil {
				report.Changed++
				report.Notified++
			}
		}
		return nil
	})
}
