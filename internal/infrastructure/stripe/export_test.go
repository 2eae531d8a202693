package stripe

import stripelib "github.com/stripe/stripe-go/v82"

// WithSessionFuncs reemplaza las llamadas al API de sesiones en tests.
func (g *Gateway) WithSessionFuncs(
	create func(*stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error),
	get func(string, *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error),
) *Gateway {
	g.createSession = create
	g.getSession = get
	return g
}
