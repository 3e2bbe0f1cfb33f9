// Package notify delivers engine events. Delivery is fire-and-forget relative to the state
// change that raised the event: callers log and drop any error returned here.
package notify

import (
	"context"
	"errors"
	"fmt"

	"btevta-wasl-backend/internal/domain"
)

// Notifier delivers one event.
type Notifier interface {
	Send(ctx context.Context, ev domain.Event) error
}

// Nop discards events. Used when no channel is configured.
type Nop struct{}

func (Nop) Send(context.Context, domain.Event) error { return nil }

// Multi fans an event out to every channel. A failing channel does not stop the others;
// all failures are returned joined.
type Multi struct {
	channels []Notifier
}

func NewMulti(channels ...Notifier) *Multi {
	return &Multi{channels: channels}
}

func (m *Multi) Add(n Notifier) {
	m.channels = append(m.channels, n)
}

func (m *Multi) Len() int { return len(m.channels) }

func (m *Multi) Send(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, n := range m.channels {
		if err := n.Send(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

// Describe renders the human title and message for an event.
func Describe(ev domain.Event) (title, message string) {
	p := ev.Payload
	switch ev.Kind {
	case domain.EventStatusChanged:
		return "Candidate status changed",
			fmt.Sprintf("Candidate #%d moved from %v to %v", ev.CandidateID, p["from"], p["to"])
	case domain.EventComplaintEscalated:
		return "Complaint escalated",
			fmt.Sprintf("Complaint #%d escalated from level %v to %v: %v", ev.SubjectID, p["previous_level"], p["new_level"], p["reason"])
	case domain.EventSLABreached:
		return "Complaint SLA breached",
			fmt.Sprintf("Complaint #%d passed its SLA and is %v hours overdue", ev.SubjectID, p["hours_overdue"])
	case domain.EventDocumentExpiring:
		return "Document expiring",
			fmt.Sprintf("%v for candidate #%d expires in %v days", p["document"], ev.CandidateID, p["days_left"])
	case domain.EventComplianceIssue:
		return "Post-departure compliance issue",
			fmt.Sprintf("Candidate #%d is non compliant at %v%% after the %v-day window", ev.CandidateID, p["percentage"], p["window_days"])
	case domain.EventSalaryVerificationReminder:
		return fmt.Sprintf("Salary verification %v", p["level"]),
			fmt.Sprintf("%v days left to confirm the first salary of candidate #%d", p["days_remaining"], ev.CandidateID)
	case domain.EventScreeningReminder:
		return "Screening follow-up",
			fmt.Sprintf("Call screening for candidate #%d has %v attempts remaining", ev.CandidateID, p["attempts_remaining"])
	}
	return string(ev.Kind), fmt.Sprintf("%s #%d", ev.SubjectType, ev.SubjectID)
}
