package jobs

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestRenderReports(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	reports := []*SweepReport{
		{Job: JobEvaluateComplaintSLAs, Scanned: 12, Changed: 3, Notified: 2, Duration: 40 * time.Millisecond},
		{Job: JobCheckRemittanceAlerts, Scanned: 4, Failed: 1, Errors: []EntityError{{Entity: "departure", ID: 9, Error: "pq: timeout"}}},
		{Job: JobSendScreeningReminders, Aborted: "list screenings: connection refused"},
	}

	var buf bytes.Buffer
	RenderReports(&buf, reports)
	out := buf.String()

	assert.Contains(t, out, JobEvaluateComplaintSLAs)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "aborted")
	assert.Contains(t, out, "departure 9: pq: timeout")
	assert.Contains(t, out, JobSendScreeningReminders+" aborted: list screenings: connection refused")

	assert.True(t, reports[0].Succeeded())
	assert.False(t, reports[1].Succeeded())
	assert.False(t, reports[2].Succeeded())
}
