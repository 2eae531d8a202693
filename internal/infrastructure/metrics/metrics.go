// Package metrics define los contadores Prometheus del portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
)

var (
	// ExternalRegistrations registros de usuarios en sistemas externos por proyecto y resultado.
	ExternalRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "external_registrations_total",
		Help:      "Registros de usuarios en sistemas externos por proyecto y resultado.",
	}, []string{"project", "outcome"})

	// GateRejections requests rechazados por falta de suscripción activa.
	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "subscription_gate_rejections_total",
		Help:      "Requests rechazados por el gate de suscripción, por estado.",
	}, []string{"status"})

	// WebhookEvents eventos de pago recibidos por tipo y resultado.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Name:      "webhook_events_total",
		Help:      "Eventos del proveedor de pagos por tipo y resultado.",
	}, []string{"event_type", "outcome"})
)

var (
	_ access.RegistrationObserver  = Observer{}
	_ subscription.WebhookObserver = Observer{}
)

// Observer adapta los contadores a los puertos de observación de los casos de uso.
type Observer struct{}

// ObserveRegistration implementa access.RegistrationObserver.
func (Observer) ObserveRegistration(project, outcome string) {
	ExternalRegistrations.WithLabelValues(project, outcome).Inc()
}

// ObserveWebhook implementa subscription.WebhookObserver.
func (Observer) ObserveWebhook(eventType, outcome string) {
	WebhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// ObserveGateRejection cuenta un rechazo del gate.
func (Observer) ObserveGateRejection(status string) {
	GateRejections.WithLabelValues(status).Inc()
}
