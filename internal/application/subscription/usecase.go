// Package subscription contiene los casos de uso de planes, pagos y ciclo de vida
// de la suscripción de cada empresa.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
	subdomain "github.com/jhoicas/crm-portal-api/internal/domain/subscription"
	"github.com/rs/zerolog"
)

// Resultados de procesamiento de webhooks (etiqueta de métricas).
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// ActivationInput datos de un pago confirmado.
type ActivationInput struct {
	CompanyID   string
	PlanID      string
	PaymentRef  string
	CustomerRef string
}

// Deps dependencias del caso de uso.
type Deps struct {
	Tx            TxRunner
	Plans         repository.SubscriptionPlanRepository
	Subscriptions repository.SubscriptionRepository
	Companies     repository.CompanyRepository
	Gateway       PaymentGateway
	Deduper       EventDeduper     // opcional
	Receipts      ReceiptGenerator // opcional
	Observer      WebhookObserver  // opcional
	Log           zerolog.Logger
}

// UseCase planes, checkout, activación idempotente, webhooks y cancelación.
type UseCase struct {
	tx       TxRunner
	plans    repository.SubscriptionPlanRepository
	subs     repository.SubscriptionRepository
	company  repository.CompanyRepository
	gateway  PaymentGateway
	deduper  EventDeduper
	receipts ReceiptGenerator
	observer WebhookObserver
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	return &UseCase{
		tx:       d.Tx,
		plans:    d.Plans,
		subs:     d.Subscriptions,
		company:  d.Companies,
		gateway:  d.Gateway,
		deduper:  d.Deduper,
		receipts: d.Receipts,
		observer: d.Observer,
		log:      d.Log,
		now:      time.Now,
	}
}

// ── Planes ───────────────────────────────────────────────────────────────────

// CreatePlan da de alta un plan.
func (uc *UseCase) CreatePlan(ctx context.Context, in dto.PlanRequest) (*dto.PlanResponse, error) {
	now := uc.now()
	plan := &entity.SubscriptionPlan{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Amount:    in.Amount,
		Currency:  strings.ToLower(in.Currency),
		Interval:  in.Interval,
		Features:  in.Features,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if plan.Features == nil {
		plan.Features = []string{}
	}
	if err := uc.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// UpdatePlan reemplaza los datos de un plan.
func (uc *UseCase) UpdatePlan(ctx context.Context, id string, in dto.PlanRequest) (*dto.PlanResponse, error) {
	plan, err := uc.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	plan.Name = strings.TrimSpace(in.Name)
	plan.Amount = in.Amount
	plan.Currency = strings.ToLower(in.Currency)
	plan.Interval = in.Interval
	if in.Features != nil {
		plan.Features = in.Features
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	plan.UpdatedAt = uc.now()
	if err := uc.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// GetPlan obtiene un plan.
func (uc *UseCase) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := uc.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return toPlanResponse(plan), nil
}

// ListPlans lista planes; los tenants solo ven los activos.
func (uc *UseCase) ListPlans(ctx context.Context, onlyActive bool) ([]dto.PlanResponse, error) {
	list, err := uc.plans.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toPlanResponse(p))
	}
	return out, nil
}

// DeletePlan elimina un plan sin suscripciones vivas.
func (uc *UseCase) DeletePlan(ctx context.Context, id string) error {
	plan, err := uc.plans.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return domain.ErrNotFound
	}
	n, err := uc.plans.CountLiveSubscriptions(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w (%d)", domain.ErrPlanInUse, n)
	}
	return uc.plans.Delete(ctx, id)
}

// ── Checkout y activación ────────────────────────────────────────────────────

// CreateCheckout abre una sesión de pago para el plan en nombre de la empresa del actor.
func (uc *UseCase) CreateCheckout(ctx context.Context, actor entity.Actor, planID string) (*dto.CheckoutResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	company, err := uc.company.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.Status == entity.CompanyStatusPending || company.Status == entity.CompanyStatusRejected {
		return nil, fmt.Errorf("%w: la empresa no está aprobada", domain.ErrConflict)
	}
	plan, err := uc.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	if !plan.IsActive {
		return nil, domain.ErrPlanInactive
	}

	sess, err := uc.gateway.CreateCheckout(ctx, CheckoutParams{
		CompanyID:     company.ID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Currency:      plan.Currency,
		AmountMinor:   plan.AmountMinor(),
		CustomerRef:   company.BillingCustomerRef,
		CustomerEmail: company.Email,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("company_id", company.ID).Str("plan_id", plan.ID).Msg("No se pudo crear la sesión de pago")
		return nil, err
	}
	if sess.CustomerRef != "" && sess.CustomerRef != company.BillingCustomerRef {
		company.BillingCustomerRef = sess.CustomerRef
		company.UpdatedAt = uc.now()
		if err := uc.company.Update(ctx, company); err != nil {
			uc.log.Warn().Err(err).Str("company_id", company.ID).Msg("No se pudo guardar el cliente del proveedor de pagos")
		}
	}
	uc.log.Info().Str("company_id", company.ID).Str("plan_id", plan.ID).Str("session_id", sess.ID).Msg("Sesión de pago creada")
	return &dto.CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// Activate aplica un pago confirmado. Es idempotente: con la suscripción activa, mismo
// plan y misma referencia de pago no cambia nada. Una referencia nueva renueva el periodo.
func (uc *UseCase) Activate(ctx context.Context, in ActivationInput) (*entity.Subscription, error) {
	if in.CompanyID == "" || in.PlanID == "" || in.PaymentRef == "" {
		return nil, fmt.Errorf("%w: company_id, plan_id y payment_ref son requeridos", domain.ErrInvalidInput)
	}
	plan, err := uc.plans.GetByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan %s", domain.ErrNotFound, in.PlanID)
	}

	var (
		out     *entity.Subscription
		changed bool
	)
	err = uc.tx.RunSubscription(ctx, func(subs repository.SubscriptionRepository, companies repository.CompanyRepository) error {
		company, err := companies.GetByID(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, in.CompanyID)
		}
		current, err := subs.GetByCompany(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if current != nil &&
			current.Status == entity.SubStatusActive &&
			current.PlanID == plan.ID &&
			current.PaymentRef == in.PaymentRef {
			out = current
			return nil
		}

		now := uc.now()
		start := now
		if current != nil && current.Status == entity.SubStatusActive && current.PlanID == plan.ID {
			start = subdomain.RenewalStart(now, current)
		}
		end, err := subdomain.PeriodEnd(start, plan.Interval)
		if err != nil {
			return err
		}

		sub := current
		if sub == nil {
			sub = &entity.Subscription{ID: uuid.New().String(), CompanyID: company.ID, CreatedAt: now}
		}
		sub.PlanID = plan.ID
		sub.PaymentRef = in.PaymentRef
		if in.CustomerRef != "" {
			sub.CustomerRef = in.CustomerRef
		}
		sub.Status = entity.SubStatusActive
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
		sub.CancelAtPeriodEnd = false
		sub.CanceledAt = nil
		sub.UpdatedAt = now
		if err := subs.Upsert(ctx, sub); err != nil {
			return err
		}

		company.Status = entity.CompanyStatusActive
		company.SubscriptionStatus = entity.SubscriptionStatusActive
		if in.CustomerRef != "" {
			company.BillingCustomerRef = in.CustomerRef
		}
		company.UpdatedAt = now
		if err := companies.Update(ctx, company); err != nil {
			return err
		}
		out = sub
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		uc.log.Info().
			Str("company_id", in.CompanyID).
			Str("plan_id", plan.ID).
			Str("payment_ref", in.PaymentRef).
			Time("period_end", out.CurrentPeriodEnd).
			Msg("Suscripción activada")
	}
	return out, nil
}

// ConfirmCheckout activa desde la redirección de éxito cuando el webhook aún no llegó.
func (uc *UseCase) ConfirmCheckout(ctx context.Context, sessionID string) (*dto.SubscriptionResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session_id es requerido", domain.ErrInvalidInput)
	}
	sess, err := uc.gateway.GetCheckout(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != PaymentStatusPaid {
		return nil, domain.ErrPaymentNotCompleted
	}
	sub, err := uc.Activate(ctx, activationFrom(sess.Metadata, sess.PaymentRef, sess.CustomerRef))
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub), nil
}

// ── Webhooks ─────────────────────────────────────────────────────────────────

// HandleWebhook verifica y procesa un evento del proveedor de pagos. El id del evento
// se registra solo después de procesarlo con éxito; un duplicado se confirma sin reprocesar.
func (uc *UseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	evt, err := uc.gateway.ParseEvent(payload, signature)
	if err != nil {
		uc.observe("unknown", OutcomeFailed)
		return nil, err
	}
	log := uc.log.With().Str("event_id", evt.ID).Str("event_type", evt.Type).Logger()

	if uc.deduper != nil {
		seen, err := uc.deduper.Seen(ctx, evt.ID)
		if err != nil {
			log.Warn().Err(err).Msg("No se pudo consultar el registro de eventos; se procesa igual")
		} else if seen {
			log.Info().Msg("Evento duplicado, se ignora")
			uc.observe(evt.Type, OutcomeDuplicate)
			return &dto.WebhookAck{Received: true, Duplicate: true}, nil
		}
	}

	outcome, err := uc.dispatch(ctx, evt, log)
	if err != nil {
		log.Error().Err(err).Msg("Error procesando evento de pago")
		uc.observe(evt.Type, OutcomeFailed)
		return nil, err
	}
	if uc.deduper != nil {
		if err := uc.deduper.Mark(ctx, evt.ID); err != nil {
			log.Warn().Err(err).Msg("No se pudo registrar el evento procesado")
		}
	}
	uc.observe(evt.Type, outcome)
	return &dto.WebhookAck{Received: true}, nil
}

func (uc *UseCase) dispatch(ctx context.Context, evt *PaymentEvent, log zerolog.Logger) (string, error) {
	switch evt.Type {
	case EventCheckoutCompleted:
		if evt.PaymentStatus != PaymentStatusPaid {
			log.Info().Str("payment_status", evt.PaymentStatus).Msg("Checkout completado sin pago confirmado")
			return OutcomeIgnored, nil
		}
		return uc.activateFromEvent(ctx, evt, log)
	case EventPaymentSucceeded:
		return uc.activateFromEvent(ctx, evt, log)
	case EventPaymentFailed:
		companyID := evt.Metadata["company_id"]
		if companyID == "" {
			log.Warn().Msg("Pago fallido sin company_id en metadata")
			return OutcomeIgnored, nil
		}
		if err := uc.markPastDue(ctx, companyID); err != nil {
			return "", err
		}
		return OutcomeProcessed, nil
	default:
		return OutcomeIgnored, nil
	}
}

func (uc *UseCase) activateFromEvent(ctx context.Context, evt *PaymentEvent, log zerolog.Logger) (string, error) {
	in := activationFrom(evt.Metadata, evt.PaymentRef, evt.CustomerRef)
	if in.CompanyID == "" || in.PlanID == "" {
		log.Warn().Msg("Evento de pago sin company_id/plan_id en metadata")
		return OutcomeIgnored, nil
	}
	if _, err := uc.Activate(ctx, in); err != nil {
		return "", err
	}
	return OutcomeProcessed, nil
}

func (uc *UseCase) markPastDue(ctx context.Context, companyID string) error {
	return uc.tx.RunSubscription(ctx, func(subs repository.SubscriptionRepository, companies repository.CompanyRepository) error {
		company, err := companies.GetByID(ctx, companyID)
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, companyID)
		}
		now := uc.now()
		sub, err := subs.GetByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		if sub != nil {
			sub.Status = entity.SubStatusPastDue
			sub.UpdatedAt = now
			if err := subs.Upsert(ctx, sub); err != nil {
				return err
			}
		}
		company.SubscriptionStatus = entity.SubscriptionStatusPastDue
		company.UpdatedAt = now
		if err := companies.Update(ctx, company); err != nil {
			return err
		}
		uc.log.Warn().Str("company_id", companyID).Msg("Pago fallido: suscripción en mora")
		return nil
	})
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

// Cancel cancela la suscripción de la empresa del actor. Sin immediate solo marca
// cancel_at_period_end; con immediate suspende la empresa.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, immediate bool) (*dto.SubscriptionResponse, error) {
	if actor.CompanyID == "" {
		return nil, domain.ErrForbidden
	}
	var out *entity.Subscription
	err := uc.tx.RunSubscription(ctx, func(subs repository.SubscriptionRepository, companies repository.CompanyRepository) error {
		sub, err := subs.GetByCompany(ctx, actor.CompanyID)
		if err != nil {
			return err
		}
		if sub == nil || sub.Status == entity.SubStatusCanceled {
			return domain.ErrNoSubscription
		}
		now := uc.now()
		sub.UpdatedAt = now
		if !immediate {
			sub.CancelAtPeriodEnd = true
			out = sub
			return subs.Upsert(ctx, sub)
		}
		sub.Status = entity.SubStatusCanceled
		sub.CanceledAt = &now
		if err := subs.Upsert(ctx, sub); err != nil {
			return err
		}
		company, err := companies.GetByID(ctx, actor.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		company.Status = entity.CompanyStatusSuspended
		company.SubscriptionStatus = entity.SubscriptionStatusCanceled
		company.UpdatedAt = now
		out = sub
		return companies.Update(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", actor.CompanyID).Bool("immediate", immediate).Str("actor", actor.UserID).Msg("Suscripción cancelada")
	return toSubscriptionResponse(out), nil
}

// Current suscripción de la empresa del actor.
func (uc *UseCase) Current(ctx context.Context, actor entity.Actor) (*dto.SubscriptionResponse, error) {
	sub, err := uc.subs.GetByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNoSubscription
	}
	return toSubscriptionResponse(sub), nil
}

// Receipt comprobante PDF de la suscripción vigente.
func (uc *UseCase) Receipt(ctx context.Context, actor entity.Actor) ([]byte, error) {
	if uc.receipts == nil {
		return nil, errors.New("generador de comprobantes no configurado")
	}
	sub, err := uc.subs.GetByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNoSubscription
	}
	company, err := uc.company.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	plan, err := uc.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if company == nil || plan == nil {
		return nil, domain.ErrNotFound
	}
	return uc.receipts.Receipt(ReceiptData{Company: company, Plan: plan, Subscription: sub, IssuedAt: uc.now()})
}

func (uc *UseCase) observe(eventType, outcome string) {
	if uc.observer != nil {
		uc.observer.ObserveWebhook(eventType, outcome)
	}
}

func activationFrom(meta map[string]string, paymentRef, customerRef string) ActivationInput {
	return ActivationInput{
		CompanyID:   meta["company_id"],
		PlanID:      meta["plan_id"],
		PaymentRef:  paymentRef,
		CustomerRef: customerRef,
	}
}

func toPlanResponse(p *entity.SubscriptionPlan) *dto.PlanResponse {
	return &dto.PlanResponse{
		ID:        p.ID,
		Name:      p.Name,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Interval:  p.Interval,
		Features:  p.Features,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

func toSubscriptionResponse(s *entity.Subscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		ID:                 s.ID,
		CompanyID:          s.CompanyID,
		PlanID:             s.PlanID,
		Status:             s.Status,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CanceledAt:         s.CanceledAt,
	}
}
