package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/subscription"
)

func TestGate_SuperAdminSiempreAdmitido(t *testing.T) {
	gate := subscription.NewGate()
	for _, status := range []string{"", entity.SubscriptionStatusNone, entity.SubscriptionStatusPastDue, entity.SubscriptionStatusCanceled} {
		d := gate.Evaluate("/api/users", subscription.Subject{SuperAdmin: true, SubscriptionStatus: status})
		assert.True(t, d.Admit, "super_admin debe pasar con estado %q", status)
	}
}

func TestGate_AllowListPorPrefijo(t *testing.T) {
	gate := subscription.NewGate()
	d := gate.Evaluate("/api/subscription/checkout", subscription.Subject{HasCompany: true, SubscriptionStatus: entity.SubscriptionStatusApproved})
	assert.True(t, d.Admit)

	d = gate.Evaluate("/api/subscription-plans", subscription.Subject{})
	assert.True(t, d.Admit)
}

func TestGate_EmpresaActivaAdmitida(t *testing.T) {
	d := subscription.NewGate().Evaluate("/api/users", subscription.Subject{HasCompany: true, SubscriptionStatus: entity.SubscriptionStatusActive})
	assert.True(t, d.Admit)
}

func TestGate_CodigosDeRechazoPorEstado(t *testing.T) {
	cases := []struct {
		status string
		code   string
	}{
		{entity.SubscriptionStatusApproved, subscription.CodeSubscriptionRequired},
		{entity.SubscriptionStatusPastDue, subscription.CodePaymentFailed},
		{entity.SubscriptionStatusCanceled, subscription.CodeActiveSubscriptionRequired},
		{entity.SubscriptionStatusNone, subscription.CodeActiveSubscriptionRequired},
	}
	gate := subscription.NewGate()
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			d := gate.Evaluate("/api/projects/access", subscription.Subject{HasCompany: true, SubscriptionStatus: tc.status})
			assert.False(t, d.Admit)
			assert.Equal(t, tc.code, d.Code)
			assert.Equal(t, tc.status, d.SubscriptionStatus, "el estado debe devolverse tal cual")
		})
	}
}

func TestGate_SinEmpresaRechazado(t *testing.T) {
	d := subscription.NewGate().Evaluate("/api/users", subscription.Subject{SubscriptionStatus: entity.SubscriptionStatusActive})
	assert.False(t, d.Admit)
	assert.Equal(t, subscription.CodeActiveSubscriptionRequired, d.Code)
	assert.Equal(t, entity.SubscriptionStatusNone, d.SubscriptionStatus)
}

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)

	end, err := subscription.PeriodEnd(start, entity.IntervalMonth)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 1, 0), end)

	end, err = subscription.PeriodEnd(start, entity.IntervalYear)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 31, 10, 0, 0, 0, time.UTC), end)

	_, err = subscription.PeriodEnd(start, "week")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRenewalStart(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	vigente := &entity.Subscription{CurrentPeriodEnd: now.Add(48 * time.Hour)}
	vencida := &entity.Subscription{CurrentPeriodEnd: now.Add(-time.Hour)}

	assert.Equal(t, vigente.CurrentPeriodEnd, subscription.RenewalStart(now, vigente))
	assert.Equal(t, now, subscription.RenewalStart(now, vencida))
	assert.Equal(t, now, subscription.RenewalStart(now, nil))
}
