package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (r *recorder) Send(_ context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func escalatedEvent() domain.Event {
	return domain.NewEvent(domain.EventComplaintEscalated, "complaint", 7, 42, map[string]any{
		"previous_level": 0,
		"new_level":      1,
		"reason":         "SLA breached",
	}, at)
}

func TestMulti_ContinuesPastFailingChannel(t *testing.T) {
	failing := &recorder{err: errors.New("smtp down")}
	ok := &recorder{}
	m := NewMulti(failing, ok)

	err := m.Send(context.Background(), escalatedEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, ok.count())
}

func TestMulti_Empty(t *testing.T) {
	m := NewMulti()
	assert.NoError(t, m.Send(context.Background(), escalatedEvent()))
	m.Add(Nop{})
	assert.Equal(t, 1, m.Len())
}

func TestDescribe(t *testing.T) {
	title, msg := Describe(escalatedEvent())
	assert.Equal(t, "Complaint escalated", title)
	assert.Equal(t, "Complaint #7 escalated from level 0 to 1: SLA breached", msg)

	ev := domain.NewEvent(domain.EventStatusChanged, "candidate", 42, 42, map[string]any{"from": "training", "to": "training_completed"}, at)
	title, msg = Describe(ev)
	assert.Equal(t, "Candidate status changed", title)
	assert.Equal(t, "Candidate #42 moved from training to training_completed", msg)

	ev = domain.NewEvent(domain.EventSalaryVerificationReminder, "departure", 3, 42, map[string]any{"level": "URGENT", "days_remaining": 10}, at)
	title, msg = Describe(ev)
	assert.Equal(t, "Salary verification URGENT", title)
	assert.Equal(t, "10 days left to confirm the first salary of candidate #42", msg)

	ev = domain.NewEvent("custom", "thing", 9, 1, nil, at)
	title, msg = Describe(ev)
	assert.Equal(t, "custom", title)
	assert.Equal(t, "thing #9", msg)
}
