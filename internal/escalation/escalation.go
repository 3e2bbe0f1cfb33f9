// Package escalation decides when an unresolved complaint moves up the management chain.
package escalation

import (
	"fmt"
	"strings"
	"time"

	"btevta-wasl-backend/internal/domain"
)

type Policy struct {
	// AutoEscalateAfter is how long a breach may sit at one level before the next
	// automatic escalation.
	AutoEscalateAfter time.Duration
	MaxLevel          int
	// LevelRoles names who a complaint is escalated to, indexed by level.
	LevelRoles []string
}

func DefaultPolicy() Policy {
	return Policy{
		AutoEscalateAfter: 48 * time.Hour,
		MaxLevel:          domain.MaxEscalationLevel,
		LevelRoles: []string{
			"assignee",
			"campus_supervisor",
			"regional_manager",
			"project_director",
			"director_general",
		},
	}
}

// RoleFor returns the escalation target for level.
func (p Policy) RoleFor(level int) string {
	if level >= 0 && level < len(p.LevelRoles) {
		return p.LevelRoles[level]
	}
	return fmt.Sprintf("level_%d", level)
}

// Decision is the engine's answer for one complaint.
type Decision struct {
	Escalate      bool   `json:"escalate"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	IsAuto        bool   `json:"is_auto"`
	EscalatedTo   string `json:"escalated_to,omitempty"`
	Reason        string `json:"reason"`
}

func (p Policy) hold(c domain.Complaint, auto bool, reason string) Decision {
	return Decision{PreviousLevel: c.EscalationLevel, NewLevel: c.EscalationLevel, IsAuto: auto, Reason: reason}
}

func (p Policy) raise(c domain.Complaint, auto bool, reason string) Decision {
	next := c.EscalationLevel + 1
	return Decision{
		Escalate:      true,
		PreviousLevel: c.EscalationLevel,
		NewLevel:      next,
		IsAuto:        auto,
		EscalatedTo:   p.RoleFor(next),
		Reason:        reason,
	}
}

// OnSlaTick decides automatic escalation. A breached, unresolved complaint goes up one level
// once it has sat at its current level for AutoEscalateAfter since the breach or the last
// escalation, whichever is later.
func (p Policy) OnSlaTick(c domain.Complaint, now time.Time) Decision {
	switch {
	case c.Status.IsResolved():
		return p.hold(c, true, "complaint is resolved")
	case !c.SLABreached || c.SLABreachedAt == nil:
		return p.hold(c, true, "SLA not breached")
	case c.EscalationLevel >= p.MaxLevel:
		return p.hold(c, true, fmt.Sprintf("already at maximum level %d", p.MaxLevel))
	}

	since := *c.SLABreachedAt
	if c.EscalatedAt != nil && c.EscalatedAt.After(since) {
		since = *c.EscalatedAt
	}
	waited := now.Sub(since)
	if waited < p.AutoEscalateAfter {
		return p.hold(c, true, "waiting before next escalation")
	}

	days := int(waited / (24 * time.Hour))
	return p.raise(c, true, fmt.Sprintf("SLA breached, unresolved for %d days at level %d", days, c.EscalationLevel))
}

// Manual decides a human-requested escalation. It skips the wait but not the cap.
func (p Policy) Manual(c domain.Complaint, reason string) Decision {
	if c.Status.IsResolved() {
		return p.hold(c, false, "complaint is resolved")
	}
	if c.EscalationLevel >= p.MaxLevel {
		return p.hold(c, false, fmt.Sprintf("already at maximum level %d", p.MaxLevel))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual escalation"
	}
	return p.raise(c, false, reason)
}

// Apply writes an escalating decision onto c. It is a no-op for non-escalating decisions.
func Apply(c *domain.Complaint, d Decision, now time.Time) {
	if !d.Escalate || d.NewLevel <= c.EscalationLevel {
		return
	}
	c.EscalationLevel = d.NewLevel
	c.EscalatedTo = d.EscalatedTo
	at := now
	c.EscalatedAt = &at
}

// History builds the escalation history row for d.
func (d Decision) History(complaintID int64, actor string, now time.Time) domain.ComplaintEscalation {
	return domain.ComplaintEscalation{
		ComplaintID:   complaintID,
		PreviousLevel: d.PreviousLevel,
		NewLevel:      d.NewLevel,
		EscalatedTo:   d.EscalatedTo,
		Reason:        d.Reason,
		IsAuto:        d.IsAuto,
		Actor:         actor,
		CreatedAt:     now,
	}
}

// Event builds the complaint_escalated notification for d.
func (d Decision) Event(c domain.Complaint, now time.Time) domain.Event {
	return domain.NewEvent(domain.EventComplaintEscalated, "complaint", c.ID, c.CandidateID, map[string]any{
		"previous_level":     d.PreviousLevel,
		"new_level":          d.NewLevel,
		"reason":             d.Reason,
		"is_auto_escalation": d.IsAuto,
		"escalated_to":       d.EscalatedTo,
		"priority":           string(c.Priority),
	}, now)
}
