// Package subscription contiene las reglas puras de suscripción: admisión de
// requests según el estado de pago de la empresa y cálculo de periodos.
package subscription

import (
	"strings"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// Códigos de rechazo del gate (distintos de FORBIDDEN: indican "pagar y reintentar").
const (
	CodeSubscriptionRequired       = "SUBSCRIPTION_REQUIRED"
	CodePaymentFailed              = "PAYMENT_FAILED"
	CodeActiveSubscriptionRequired = "ACTIVE_SUBSCRIPTION_REQUIRED"
)

// DefaultAllowList rutas de gestión de suscripción que nunca se bloquean (match por prefijo).
var DefaultAllowList = []string{
	"/api/subscription",
	"/api/subscription-plans",
	"/api/auth",
	"/api/me",
}

// Subject datos del usuario autenticado que el gate necesita.
type Subject struct {
	SuperAdmin         bool
	HasCompany         bool
	SubscriptionStatus string
}

// Decision resultado de evaluar un request.
type Decision struct {
	Admit              bool
	Code               string
	Message            string
	SubscriptionStatus string
}

// Gate decide si un request de tenant puede continuar.
type Gate struct {
	allowList []string
}

// NewGate construye el gate. Sin prefijos usa DefaultAllowList.
func NewGate(allowList ...string) *Gate {
	if len(allowList) == 0 {
		allowList = DefaultAllowList
	}
	return &Gate{allowList: allowList}
}

// Evaluate aplica, en orden: super-admin, allow-list, suscripción activa de la empresa.
func (g *Gate) Evaluate(path string, s Subject) Decision {
	if s.SuperAdmin {
		return Decision{Admit: true}
	}
	for _, prefix := range g.allowList {
		if strings.HasPrefix(path, prefix) {
			return Decision{Admit: true}
		}
	}

	status := s.SubscriptionStatus
	if !s.HasCompany || status == "" {
		status = entity.SubscriptionStatusNone
	}
	if s.HasCompany && status == entity.SubscriptionStatusActive {
		return Decision{Admit: true, SubscriptionStatus: status}
	}

	switch status {
	case entity.SubscriptionStatusApproved:
		return Decision{
			Code:               CodeSubscriptionRequired,
			Message:            "la empresa fue aprobada; se requiere una suscripción para continuar",
			SubscriptionStatus: status,
		}
	case entity.SubscriptionStatusPastDue:
		return Decision{
			Code:               CodePaymentFailed,
			Message:            "el último pago falló; actualice el método de pago",
			SubscriptionStatus: status,
		}
	default:
		return Decision{
			Code:               CodeActiveSubscriptionRequired,
			Message:            "se requiere una suscripción activa",
			SubscriptionStatus: status,
		}
	}
}
