package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
)

// SubscriptionHandler planes, checkout y ciclo de vida de la suscripción.
type SubscriptionHandler struct {
	responder
	uc *subscription.UseCase
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(uc *subscription.UseCase, debug bool) *SubscriptionHandler {
	return &SubscriptionHandler{responder: responder{debug: debug}, uc: uc}
}

// ── Planes ────────────────────────────────────────────────────────────────────

// ListPlans godoc
// @Summary      Listar planes (solo activos para tenants)
// @Tags         subscription
// @Produce      json
// @Success      200  {array}  dto.PlanResponse
// @Router       /api/subscription-plans [get]
func (h *SubscriptionHandler) ListPlans(c *fiber.Ctx) error {
	out, err := h.uc.ListPlans(c.Context(), !GetActor(c).IsSuperAdmin())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// CreatePlan POST /api/admin/subscription-plans
func (h *SubscriptionHandler) CreatePlan(c *fiber.Ctx) error {
	var in dto.PlanRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.uc.CreatePlan(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdatePlan PUT /api/admin/subscription-plans/:id
func (h *SubscriptionHandler) UpdatePlan(c *fiber.Ctx) error {
	var in dto.PlanRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if errs := in.Validate(); !errs.Empty() {
		return h.invalid(c, errs)
	}
	out, err := h.uc.UpdatePlan(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetPlan GET /api/admin/subscription-plans/:id
func (h *SubscriptionHandler) GetPlan(c *fiber.Ctx) error {
	out, err := h.uc.GetPlan(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// DeletePlan godoc
// @Summary      Eliminar plan
// @Tags         admin-plans
// @Param        id   path  string  true  "ID del plan"
// @Success      204
// @Failure      422  {object}  dto.ErrorResponse  "plan con suscripciones activas"
// @Router       /api/admin/subscription-plans/{id} [delete]
func (h *SubscriptionHandler) DeletePlan(c *fiber.Ctx) error {
	if err := h.uc.DeletePlan(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Suscripción de la empresa ─────────────────────────────────────────────────

// Checkout godoc
// @Summary      Crear sesión de pago
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "plan_id"
// @Success      201   {object}  dto.CheckoutResponse
// @Router       /api/subscription/checkout [post]
func (h *SubscriptionHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if in.PlanID == "" {
		return h.missing(c, "plan_id")
	}
	out, err := h.uc.CreateCheckout(c.Context(), GetActor(c), in.PlanID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CheckoutSuccess godoc
// @Summary      Confirmación del checkout (redirect de éxito)
// @Tags         subscription
// @Produce      json
// @Param        session_id  query  string  true  "ID de la sesión de pago"
// @Success      200  {object}  dto.SubscriptionResponse
// @Failure      402  {object}  dto.ErrorResponse
// @Router       /api/subscription/checkout/success [get]
func (h *SubscriptionHandler) CheckoutSuccess(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return h.missing(c, "session_id")
	}
	out, err := h.uc.ConfirmCheckout(c.Context(), sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Current GET /api/subscription
func (h *SubscriptionHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.Context(), GetActor(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar suscripción
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelSubscriptionRequest  false  "immediate"
// @Success      200   {object}  dto.SubscriptionResponse
// @Router       /api/subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSubscriptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return h.badBody(c)
		}
	}
	out, err := h.uc.Cancel(c.Context(), GetActor(c), in.Immediate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Receipt descarga el comprobante PDF.
// GET /api/subscription/receipt
func (h *SubscriptionHandler) Receipt(c *fiber.Ctx) error {
	out, err := h.uc.Receipt(c.Context(), GetActor(c))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="comprobante-suscripcion.pdf"`)
	return c.Send(out)
}

// ── Webhook ───────────────────────────────────────────────────────────────────

// Webhook godoc
// @Summary      Webhook del proveedor de pagos
// @Tags         stripe
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.WebhookAck
// @Failure      400  {object}  dto.ErrorResponse  "firma inválida"
// @Router       /api/stripe/webhook [post]
func (h *SubscriptionHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	out, err := h.uc.HandleWebhook(c.Context(), payload, c.Get("Stripe-Signature"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
