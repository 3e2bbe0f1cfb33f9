package escalation

import (
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func breachedComplaint(level int, breachedAgo time.Duration) domain.Complaint {
	at := now.Add(-breachedAgo)
	return domain.Complaint{
		ID:              42,
		CandidateID:     7,
		Status:          domain.ComplaintStatusAssigned,
		Priority:        domain.ComplaintPriorityHigh,
		EscalationLevel: level,
		SLABreached:     true,
		SLABreachedAt:   &at,
	}
}

func TestOnSlaTick(t *testing.T) {
	p := DefaultPolicy()

	t.Run("escalates after two days of breach", func(t *testing.T) {
		d := p.OnSlaTick(breachedComplaint(0, 49*time.Hour), now)
		assert.True(t, d.Escalate)
		assert.True(t, d.IsAuto)
		assert.Equal(t, 0, d.PreviousLevel)
		assert.Equal(t, 1, d.NewLevel)
		assert.Equal(t, "campus_supervisor", d.EscalatedTo)
	})

	t.Run("waits before two days", func(t *testing.T) {
		d := p.OnSlaTick(breachedComplaint(0, 47*time.Hour), now)
		assert.False(t, d.Escalate)
		assert.Equal(t, 0, d.NewLevel)
	})

	t.Run("not breached", func(t *testing.T) {
		c := breachedComplaint(0, 72*time.Hour)
		c.SLABreached = false
		assert.False(t, p.OnSlaTick(c, now).Escalate)
	})

	t.Run("resolved", func(t *testing.T) {
		c := breachedComplaint(1, 72*time.Hour)
		c.Status = domain.ComplaintStatusResolved
		assert.False(t, p.OnSlaTick(c, now).Escalate)
	})

	t.Run("waits again after each escalation", func(t *testing.T) {
		c := breachedComplaint(0, 10*24*time.Hour)
		d := p.OnSlaTick(c, now)
		assert.True(t, d.Escalate)
		Apply(&c, d, now)

		assert.False(t, p.OnSlaTick(c, now.Add(24*time.Hour)).Escalate)
		d = p.OnSlaTick(c, now.Add(48*time.Hour))
		assert.True(t, d.Escalate)
		assert.Equal(t, 2, d.NewLevel)
	})
}

func TestOnSlaTick_CapsAtMaxLevel(t *testing.T) {
	p := DefaultPolicy()
	c := breachedComplaint(0, 3*24*time.Hour)

	tick := now
	for i := 0; i < 10; i++ {
		d := p.OnSlaTick(c, tick)
		Apply(&c, d, tick)
		tick = tick.Add(72 * time.Hour)
	}
	assert.Equal(t, domain.MaxEscalationLevel, c.EscalationLevel)
	assert.Equal(t, "director_general", c.EscalatedTo)

	for i := 0; i < 5; i++ {
		d := p.OnSlaTick(c, tick)
		assert.False(t, d.Escalate)
		assert.Equal(t, domain.MaxEscalationLevel, d.NewLevel)
		tick = tick.Add(30 * 24 * time.Hour)
	}
}

func TestManual(t *testing.T) {
	p := DefaultPolicy()

	c := domain.Complaint{ID: 1, Status: domain.ComplaintStatusOpen, EscalationLevel: 2}
	d := p.Manual(c, "  ")
	assert.True(t, d.Escalate)
	assert.False(t, d.IsAuto)
	assert.Equal(t, 3, d.NewLevel)
	assert.Equal(t, "manual escalation", d.Reason)

	c.EscalationLevel = domain.MaxEscalationLevel
	d = p.Manual(c, "employer not responding")
	assert.False(t, d.Escalate)
	assert.Equal(t, domain.MaxEscalationLevel, d.NewLevel)

	c.EscalationLevel = 0
	c.Status = domain.ComplaintStatusClosed
	assert.False(t, p.Manual(c, "x").Escalate)
}

func TestDecisionEventAndHistory(t *testing.T) {
	p := DefaultPolicy()
	c := breachedComplaint(1, 72*time.Hour)
	d := p.OnSlaTick(c, now)

	ev := d.Event(c, now)
	assert.Equal(t, domain.EventComplaintEscalated, ev.Kind)
	assert.Equal(t, int64(42), ev.SubjectID)
	assert.Equal(t, int64(7), ev.CandidateID)
	assert.Equal(t, 1, ev.Payload["previous_level"])
	assert.Equal(t, 2, ev.Payload["new_level"])
	assert.Equal(t, true, ev.Payload["is_auto_escalation"])

	h := d.History(c.ID, "system", now)
	assert.Equal(t, 1, h.PreviousLevel)
	assert.Equal(t, 2, h.NewLevel)
	assert.True(t, h.IsAuto)
	assert.Equal(t, "system", h.Actor)
}

func TestApply_IgnoresNonEscalating(t *testing.T) {
	c := domain.Complaint{EscalationLevel: 3}
	Apply(&c, Decision{Escalate: false, NewLevel: 4}, now)
	assert.Equal(t, 3, c.EscalationLevel)
	Apply(&c, Decision{Escalate: true, NewLevel: 2}, now)
	assert.Equal(t, 3, c.EscalationLevel)
}
