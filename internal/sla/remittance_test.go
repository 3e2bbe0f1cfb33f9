package sla

import (
	"testing"

	"btevta-wasl-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func remittance(id int64, daysAgo int, amount int64, proof bool) domain.Remittance {
	return domain.Remittance{
		ID:       id,
		Amount:   decimal.NewFromInt(amount),
		Currency: "SAR",
		SentAt:   now.AddDate(0, 0, -daysAgo),
		HasProof: proof,
	}
}

func findingTypes(fs []Finding) []domain.RemittanceAlertType {
	out := make([]domain.RemittanceAlertType, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Type)
	}
	return out
}

func TestCheckRemittances(t *testing.T) {
	p := DefaultPolicy()

	t.Run("first remittance delay", func(t *testing.T) {
		assert.Empty(t, p.CheckRemittances(now.AddDate(0, 0, -30), nil, now))
		fs := p.CheckRemittances(now.AddDate(0, 0, -61), nil, now)
		assert.Equal(t, []domain.RemittanceAlertType{domain.AlertTypeFirstRemittanceDelay}, findingTypes(fs))
	})

	t.Run("healthy history", func(t *testing.T) {
		rs := []domain.Remittance{
			remittance(1, 150, 1000, true),
			remittance(2, 120, 1100, true),
			remittance(3, 90, 900, true),
			remittance(4, 60, 1000, true),
			remittance(5, 30, 1200, true),
		}
		assert.Empty(t, p.CheckRemittances(now.AddDate(0, 0, -200), rs, now))
	})

	t.Run("missing remittance and low frequency", func(t *testing.T) {
		rs := []domain.Remittance{remittance(1, 150, 1000, true), remittance(2, 100, 1000, true)}
		fs := p.CheckRemittances(now.AddDate(0, 0, -200), rs, now)
		assert.ElementsMatch(t, []domain.RemittanceAlertType{domain.AlertTypeMissingRemittance, domain.AlertTypeLowFrequency}, findingTypes(fs))
	})

	t.Run("low frequency waits for the full window", func(t *testing.T) {
		rs := []domain.Remittance{remittance(1, 20, 1000, true)}
		assert.Empty(t, p.CheckRemittances(now.AddDate(0, 0, -100), rs, now))
	})

	t.Run("missing proof after grace period", func(t *testing.T) {
		rs := []domain.Remittance{remittance(7, 40, 1000, false), remittance(8, 10, 1000, false)}
		fs := p.CheckRemittances(now.AddDate(0, 0, -60), rs, now)
		if assert.Len(t, fs, 1) {
			assert.Equal(t, domain.AlertTypeMissingProof, fs[0].Type)
			assert.Equal(t, int64(7), *fs[0].RemittanceID)
		}
	})

	t.Run("unusual amount", func(t *testing.T) {
		rs := []domain.Remittance{
			remittance(1, 120, 1000, true),
			remittance(2, 90, 1000, true),
			remittance(3, 60, 1000, true),
			remittance(4, 5, 5000, true),
		}
		fs := p.CheckRemittances(now.AddDate(0, 0, -130), rs, now)
		if assert.Len(t, fs, 1) {
			assert.Equal(t, domain.AlertTypeUnusualAmount, fs[0].Type)
			assert.Equal(t, int64(4), *fs[0].RemittanceID)
		}

		rs[3].Amount = decimal.NewFromInt(3000)
		assert.Empty(t, p.CheckRemittances(now.AddDate(0, 0, -130), rs, now))
	})
}

func TestUnusualAmount_StaysOpenAfterNormalRemittance(t *testing.T) {
	p := DefaultPolicy()
	departed := now.AddDate(0, 0, -130)
	rs := []domain.Remittance{
		remittance(1, 120, 100, true),
		remittance(2, 90, 100, true),
		remittance(3, 60, 100, true),
		remittance(4, 30, 1000, true),
	}

	fs := p.CheckRemittances(departed, rs, now)
	create, resolve := ReconcileAlerts(nil, fs)
	if assert.Len(t, create, 1) {
		assert.Equal(t, domain.AlertTypeUnusualAmount, create[0].Type)
		assert.Equal(t, int64(4), *create[0].RemittanceID)
	}
	assert.Empty(t, resolve)

	id := int64(4)
	open := []domain.RemittanceAlert{{ID: 11, Type: domain.AlertTypeUnusualAmount, RemittanceID: &id}}
	rs = append(rs, remittance(5, 2, 300, true))

	fs = p.CheckRemittances(departed, rs, now)
	create, resolve = ReconcileAlerts(open, fs)
	assert.Empty(t, create)
	assert.Empty(t, resolve)
}

func TestReconcileAlerts(t *testing.T) {
	id := int64(7)
	open := []domain.RemittanceAlert{
		{ID: 1, Type: domain.AlertTypeFirstRemittanceDelay},
		{ID: 2, Type: domain.AlertTypeMissingProof, RemittanceID: &id},
	}
	findings := []Finding{
		{Type: domain.AlertTypeMissingProof, RemittanceID: &id},
		{Type: domain.AlertTypeMissingRemittance},
		{Type: domain.AlertTypeMissingRemittance},
	}

	create, resolve := ReconcileAlerts(open, findings)
	assert.Equal(t, []domain.RemittanceAlertType{domain.AlertTypeMissingRemittance}, findingTypes(create))
	if assert.Len(t, resolve, 1) {
		assert.Equal(t, int64(1), resolve[0].ID)
	}

	create, resolve = ReconcileAlerts(nil, nil)
	assert.Empty(t, create)
	assert.Empty(t, resolve)
}
