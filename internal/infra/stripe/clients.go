package stripe

import (
	stripelib "github.com/stripe/stripe-go/v75"
	portalsession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/price"
)

// Clients are keyed API clients; nothing reads the package-level stripe.Key.
type Clients struct {
	Checkout *checkoutsession.Client
	Portal   *portalsession.Client
	Prices   *price.Client
}

func NewClients(secretKey string) Clients {
	backend := stripelib.GetBackend(stripelib.APIBackend)
	return Clients{
		Checkout: &checkoutsession.Client{B: backend, Key: secretKey},
		Portal:   &portalsession.Client{B: backend, Key: secretKey},
		Prices:   &price.Client{B: backend, Key: secretKey},
	}
}
