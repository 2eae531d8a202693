// Package stripe adapta Stripe Checkout y sus webhooks al flujo de suscripciones.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripelib "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/pkg/config"
)

var _ subscription.PaymentGateway = (*Gateway)(nil)

// Config credenciales y URLs de retorno del checkout.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// FromAppConfig toma la sección Stripe de la configuración de la aplicación.
func FromAppConfig(c config.StripeConfig) Config {
	return Config{
		SecretKey:     c.SecretKey,
		WebhookSecret: c.WebhookSecret,
		SuccessURL:    c.SuccessURL,
		CancelURL:     c.CancelURL,
	}
}

// Gateway implementación de subscription.PaymentGateway sobre stripe-go.
type Gateway struct {
	cfg Config

	createSession func(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
	getSession    func(id string, params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
}

// NewGateway configura la clave global del SDK.
func NewGateway(cfg Config) *Gateway {
	stripelib.Key = strings.TrimSpace(cfg.SecretKey)
	return &Gateway{
		cfg:           cfg,
		createSession: stripesession.New,
		getSession:    stripesession.Get,
	}
}

// CreateCheckout abre una sesión en modo pago único con el precio del plan.
// La metadata viaja también en el payment intent para que sus eventos identifiquen la empresa.
func (g *Gateway) CreateCheckout(ctx context.Context, p subscription.CheckoutParams) (*subscription.CheckoutSession, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, fmt.Errorf("%w: clave secreta no configurada", domain.ErrPaymentProvider)
	}
	meta := map[string]string{
		"company_id": p.CompanyID,
		"plan_id":    p.PlanID,
	}
	params := &stripelib.CheckoutSessionParams{
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModePayment)),
		SuccessURL: stripelib.String(g.cfg.SuccessURL),
		CancelURL:  stripelib.String(g.cfg.CancelURL),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				PriceData: &stripelib.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripelib.String(strings.ToLower(p.Currency)),
					UnitAmount: stripelib.Int64(p.AmountMinor),
					ProductData: &stripelib.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripelib.String(p.PlanName),
					},
				},
				Quantity: stripelib.Int64(1),
			},
		},
		PaymentIntentData: &stripelib.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
		ClientReferenceID: stripelib.String(p.CompanyID),
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	if p.CustomerRef != "" {
		params.Customer = stripelib.String(p.CustomerRef)
	} else if p.CustomerEmail != "" {
		params.CustomerEmail = stripelib.String(p.CustomerEmail)
	}
	params.Context = ctx

	sess, err := g.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentProvider, providerMessage(err))
	}
	if sess == nil || sess.URL == "" {
		return nil, fmt.Errorf("%w: sesión sin URL", domain.ErrPaymentProvider)
	}
	return fromSession(sess), nil
}

// GetCheckout consulta una sesión con el payment intent expandido.
func (g *Gateway) GetCheckout(ctx context.Context, sessionID string) (*subscription.CheckoutSession, error) {
	params := &stripelib.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.Context = ctx
	sess, err := g.getSession(sessionID, params)
	if err != nil {
		var se *stripelib.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return nil, fmt.Errorf("%w: sesión %s", domain.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentProvider, providerMessage(err))
	}
	return fromSession(sess), nil
}

// ParseEvent verifica la firma Stripe-Signature y normaliza el evento.
func (g *Gateway) ParseEvent(payload []byte, signature string) (*subscription.PaymentEvent, error) {
	if strings.TrimSpace(g.cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: secreto de webhook no configurado", domain.ErrPaymentProvider)
	}
	if strings.TrimSpace(signature) == "" {
		return nil, domain.ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &subscription.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}
	switch out.Type {
	case subscription.EventCheckoutCompleted:
		var sess stripelib.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		norm := fromSession(&sess)
		out.PaymentStatus = norm.PaymentStatus
		out.PaymentRef = norm.PaymentRef
		out.CustomerRef = norm.CustomerRef
		out.Metadata = norm.Metadata
	case subscription.EventPaymentSucceeded, subscription.EventPaymentFailed:
		var pi stripelib.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment_intent: %w", err)
		}
		out.PaymentStatus = string(pi.Status)
		out.PaymentRef = pi.ID
		out.Metadata = pi.Metadata
		if pi.Customer != nil {
			out.CustomerRef = pi.Customer.ID
		}
	}
	return out, nil
}

// fromSession usa el payment intent como referencia de pago; sin él, el id de la sesión.
func fromSession(s *stripelib.CheckoutSession) *subscription.CheckoutSession {
	out := &subscription.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		PaymentRef:    s.ID,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
		out.PaymentRef = s.PaymentIntent.ID
	}
	if s.Customer != nil {
		out.CustomerRef = s.Customer.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if out.Metadata["company_id"] == "" && s.ClientReferenceID != "" {
		out.Metadata["company_id"] = s.ClientReferenceID
	}
	return out
}

func providerMessage(err error) string {
	var se *stripelib.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}
