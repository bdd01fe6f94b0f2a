package stripe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	stripelib "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier authenticates webhook payloads with the endpoint secret and
// rejects timestamps outside the tolerance window.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify returns the decoded event only when the signature header matches
// the raw payload. Every failure wraps ErrInvalidSignature.
func (v *Verifier) Verify(payload []byte, header string) (stripelib.Event, error) {
	if strings.TrimSpace(header) == "" {
		return stripelib.Event{}, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripelib.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}
