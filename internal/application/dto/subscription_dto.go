package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanRequest alta/edición de plan (operador).
type PlanRequest struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Interval string          `json:"interval"`
	Features []string        `json:"features"`
	IsActive *bool           `json:"is_active"`
}

// Validate valida el plan.
func (r PlanRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Name == "" {
		errs.Add("name", "es requerido")
	}
	if !r.Amount.IsPositive() {
		errs.Add("amount", "debe ser mayor que cero")
	}
	if len(r.Currency) != 3 {
		errs.Add("currency", "debe ser un código ISO 4217")
	}
	if r.Interval != "month" && r.Interval != "year" {
		errs.Add("interval", "debe ser month o year")
	}
	return errs
}

// PlanResponse salida de un plan.
type PlanResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Interval  string          `json:"interval"`
	Features  []string        `json:"features"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CheckoutRequest plan a contratar.
type CheckoutRequest struct {
	PlanID string `json:"plan_id"`
}

// CheckoutResponse sesión de pago creada.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CancelSubscriptionRequest immediate=false cancela al final del periodo.
type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

// SubscriptionResponse salida de la suscripción de la empresa.
type SubscriptionResponse struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"company_id"`
	PlanID             string     `json:"plan_id"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
}

// WebhookAck respuesta al proveedor de pagos.
type WebhookAck struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}
