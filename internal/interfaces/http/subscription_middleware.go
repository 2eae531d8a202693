package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/subscription"
)

// companyLookup contrato mínimo para leer el estado de suscripción de la empresa.
// Lo implementa repository.CompanyRepository.
type companyLookup interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// GateObserver cuenta los rechazos del gate (métricas). Puede ser nil.
type GateObserver interface {
	ObserveGateRejection(status string)
}

// SubscriptionGate aplica el gate de suscripción a las rutas de tenant. Debe usarse
// DESPUÉS de AuthMiddleware. El estado se lee en cada request, sin cache.
//
//   - 402 Payment Required → la empresa no tiene suscripción activa.
//   - 503 Service Unavailable → fallo al consultar la empresa.
func SubscriptionGate(gate *subscription.Gate, companies companyLookup, obs GateObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		subject := subscription.Subject{SuperAdmin: actor.IsSuperAdmin()}

		if !subject.SuperAdmin && actor.CompanyID != "" {
			company, err := companies.GetByID(c.Context(), actor.CompanyID)
			if err != nil {
				log.Error().Err(err).Str("company_id", actor.CompanyID).Msg("No se pudo consultar la suscripción de la empresa")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
					Code:    "SUBSCRIPTION_CHECK_FAILED",
					Message: "no se pudo verificar la suscripción, intente más tarde",
				})
			}
			if company != nil {
				subject.HasCompany = true
				subject.SubscriptionStatus = company.SubscriptionStatus
			}
		}

		decision := gate.Evaluate(c.Path(), subject)
		if decision.Admit {
			return c.Next()
		}
		if obs != nil {
			obs.ObserveGateRejection(decision.SubscriptionStatus)
		}
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.PaymentRequiredResponse{
			Code:               decision.Code,
			Message:            decision.Message,
			SubscriptionStatus: decision.SubscriptionStatus,
		})
	}
}
