package subscription

import (
	"context"
	"time"

	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
)

// Tipos de evento del proveedor de pagos que se procesan.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// PaymentStatusPaid estado de pago completado de una sesión de checkout.
const PaymentStatusPaid = "paid"

// CheckoutParams datos para abrir una sesión de pago.
type CheckoutParams struct {
	CompanyID     string
	PlanID        string
	PlanName      string
	Currency      string
	AmountMinor   int64
	CustomerRef   string
	CustomerEmail string
}

// CheckoutSession sesión de pago del proveedor, normalizada.
type CheckoutSession struct {
	ID            string
	URL           string
	CustomerRef   string
	PaymentStatus string
	// PaymentRef referencia estable del pago (payment intent); es la llave de idempotencia.
	PaymentRef string
	Metadata   map[string]string
}

// PaymentEvent evento verificado del proveedor de pagos.
type PaymentEvent struct {
	ID            string
	Type          string
	PaymentStatus string
	PaymentRef    string
	CustomerRef   string
	Metadata      map[string]string
}

// PaymentGateway proveedor de pagos (Stripe).
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// ParseEvent verifica la firma y decodifica el evento. Firma inválida ⇒ domain.ErrInvalidSignature.
	ParseEvent(payload []byte, signature string) (*PaymentEvent, error)
}

// EventDeduper registro de eventos ya procesados.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// ReceiptData datos del comprobante de suscripción.
type ReceiptData struct {
	Company      *entity.Company
	Plan         *entity.SubscriptionPlan
	Subscription *entity.Subscription
	IssuedAt     time.Time
}

// ReceiptGenerator genera el comprobante en PDF.
type ReceiptGenerator interface {
	Receipt(data ReceiptData) ([]byte, error)
}

// WebhookObserver recibe el resultado de cada evento (métricas).
type WebhookObserver interface {
	ObserveWebhook(eventType, outcome string)
}

// TxRunner ejecuta fn en una transacción: suscripción y empresa cambian juntas.
type TxRunner interface {
	RunSubscription(ctx context.Context, fn func(
		subs repository.SubscriptionRepository,
		companies repository.CompanyRepository,
	) error) error
}
