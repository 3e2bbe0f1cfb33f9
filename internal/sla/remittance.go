package sla

import (
	"fmt"
	"sort"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Finding is one remittance condition that currently holds for a candidate.
type Finding struct {
	Type         domain.RemittanceAlertType `json:"type"`
	Severity     domain.AlertSeverity       `json:"severity"`
	Message      string                     `json:"message"`
	RemittanceID *int64                     `json:"remittance_id,omitempty"`
}

func (f Finding) key() string {
	return alertKey(f.Type, f.RemittanceID)
}

func alertKey(t domain.RemittanceAlertType, remittanceID *int64) string {
	if remittanceID == nil {
		return string(t)
	}
	return fmt.Sprintf("%s/%d", t, *remittanceID)
}

// CheckRemittances evaluates a departed candidate's remittance history at now.
func (p Policy) CheckRemittances(departedAt time.Time, remittances []domain.Remittance, now time.Time) []Finding {
	th := p.Remittance
	findings := []Finding{}

	sorted := make([]domain.Remittance, len(remittances))
	copy(sorted, remittances)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SentAt.Before(sorted[j].SentAt) })

	sinceDeparture := wholeDays(now.Sub(departedAt))

	if len(sorted) == 0 {
		if sinceDeparture >= th.FirstRemittanceDays {
			findings = append(findings, Finding{
				Type:     domain.AlertTypeFirstRemittanceDelay,
				Severity: domain.AlertSeverityWarning,
				Message:  fmt.Sprintf("no remittance recorded %d days after departure", sinceDeparture),
			})
		}
	} else {
		latest := sorted[len(sorted)-1]
		if gap := wholeDays(now.Sub(latest.SentAt)); gap >= th.MissingRemittanceDays {
			findings = append(findings, Finding{
				Type:     domain.AlertTypeMissingRemittance,
				Severity: domain.AlertSeverityCritical,
				Message:  fmt.Sprintf("no remittance in the last %d days", gap),
			})
		}
	}

	for _, r := range sorted {
		if r.HasProof {
			continue
		}
		if age := wholeDays(now.Sub(r.SentAt)); age >= th.ProofGraceDays {
			id := r.ID
			findings = append(findings, Finding{
				Type:         domain.AlertTypeMissingProof,
				Severity:     domain.AlertSeverityWarning,
				Message:      fmt.Sprintf("remittance of %s %s sent %d days ago has no proof", r.Amount.StringFixed(2), r.Currency, age),
				RemittanceID: &id,
			})
		}
	}

	windowStart := now.AddDate(0, -th.LowFrequencyMonths, 0)
	if !departedAt.After(windowStart) {
		recent := 0
		for _, r := range sorted {
			if !r.SentAt.Before(windowStart) {
				recent++
			}
		}
		if recent < th.MinExpectedRemittances {
			findings = append(findings, Finding{
				Type:     domain.AlertTypeLowFrequency,
				Severity: domain.AlertSeverityWarning,
				Message:  fmt.Sprintf("%d remittances in the last %d months, expected at least %d", recent, th.LowFrequencyMonths, th.MinExpectedRemittances),
			})
		}
	}

	findings = append(findings, p.unusualAmounts(sorted)...)
	return findings
}

// unusualAmounts compares every remittance with the average of the ones sent before it, so
// an anomalous remittance keeps its finding after later remittances arrive.
func (p Policy) unusualAmounts(sorted []domain.Remittance) []Finding {
	th := p.Remittance
	if !th.UnusualAmountMultiplier.IsPositive() {
		return nil
	}
	var out []Finding
	sum := decimal.Zero
	for i, r := range sorted {
		if i >= th.UnusualAmountMinHistory && i > 0 {
			avg := sum.Div(decimal.NewFromInt(int64(i)))
			if avg.IsPositive() && !withinRange(r.Amount, avg, th.UnusualAmountMultiplier) {
				id := r.ID
				out = append(out, Finding{
					Type:         domain.AlertTypeUnusualAmount,
					Severity:     domain.AlertSeverityInfo,
					Message:      fmt.Sprintf("remittance of %s %s differs from the average of %s", r.Amount.StringFixed(2), r.Currency, avg.StringFixed(2)),
					RemittanceID: &id,
				})
			}
		}
		sum = sum.Add(r.Amount)
	}
	return out
}

func withinRange(amount, avg, multiplier decimal.Decimal) bool {
	return amount.LessThanOrEqual(avg.Mul(multiplier)) && amount.GreaterThanOrEqual(avg.Div(multiplier))
}

// ReconcileAlerts splits findings against the candidate's unresolved alerts: findings with
// no open alert are created, open alerts whose condition no longer holds are resolved.
func ReconcileAlerts(open []domain.RemittanceAlert, findings []Finding) (create []Finding, resolve []domain.RemittanceAlert) {
	active := make(map[string]bool, len(findings))
	for _, f := range findings {
		active[f.key()] = true
	}
	existing := make(map[string]bool, len(open))
	for _, a := range open {
		if a.IsResolved {
			continue
		}
		k := alertKey(a.Type, a.RemittanceID)
		existing[k] = true
		if !active[k] {
			resolve = append(resolve, a)
		}
	}
	for _, f := range findings {
		if !existing[f.key()] {
			create = append(create, f)
			existing[f.key()] = true
		}
	}
	return create, resolve
}
