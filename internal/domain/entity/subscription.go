package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Intervalos de facturación de un plan.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Estados de Subscription (reflejan los de Stripe).
const (
	SubStatusActive     = "active"
	SubStatusTrialing   = "trialing"
	SubStatusPastDue    = "past_due"
	SubStatusCanceled   = "canceled"
	SubStatusIncomplete = "incomplete"
)

// SubscriptionPlan entrada del catálogo de planes gestionado por los operadores.
type SubscriptionPlan struct {
	ID        string
	Name      string
	Amount    decimal.Decimal // unidades mayores (ej. 49.90)
	Currency  string          // ISO 4217 en minúsculas
	Interval  string          // month, year
	Features  []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AmountMinor devuelve el importe en unidades menores (centavos) para el proveedor de pagos.
func (p *SubscriptionPlan) AmountMinor() int64 {
	return p.Amount.Shift(2).Round(0).IntPart()
}

// Subscription suscripción de una empresa. Como máximo una por empresa (upsert por company_id).
type Subscription struct {
	ID                 string
	CompanyID          string
	PlanID             string
	CustomerRef        string // cus_...
	PaymentRef         string // cs_... o pi_... del último pago aplicado
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
