package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/crm-portal-api/internal/infrastructure/metrics"
)

func TestObserver_Counters(t *testing.T) {
	obs := metrics.Observer{}

	before := testutil.ToFloat64(metrics.ExternalRegistrations.WithLabelValues("tg-calabria", "registered"))
	obs.ObserveRegistration("tg-calabria", "registered")
	obs.ObserveRegistration("tg-calabria", "registered")
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ExternalRegistrations.WithLabelValues("tg-calabria", "registered")))

	before = testutil.ToFloat64(metrics.GateRejections.WithLabelValues("past_due"))
	obs.ObserveGateRejection("past_due")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GateRejections.WithLabelValues("past_due")))

	before = testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues("checkout.session.completed", "processed"))
	obs.ObserveWebhook("checkout.session.completed", "processed")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues("checkout.session.completed", "processed")))
}
