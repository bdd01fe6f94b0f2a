// Package stripetest builds signed Stripe webhook payloads for tests.
package stripetest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v75/webhook"
)

// Header returns a Stripe-Signature header for payload signed at ts.
func Header(payload []byte, secret string, ts time.Time) string {
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

// Event wraps object in an event envelope.
func Event(id, eventType string, object interface{}) []byte {
	raw, err := json.Marshal(object)
	if err != nil {
		panic(err)
	}
	b, err := json.Marshal(map[string]interface{}{
		"id":      id,
		"object":  "event",
		"type":    eventType,
		"created": time.Now().Unix(),
		"data":    map[string]interface{}{"object": json.RawMessage(raw)},
	})
	if err != nil {
		panic(err)
	}
	return b
}

// CheckoutCompleted builds a checkout.session.completed event.
func CheckoutCompleted(eventID, paymentStatus, userID, customer, subscription string) []byte {
	obj := map[string]interface{}{
		"id":             "cs_" + eventID,
		"object":         "checkout.session",
		"mode":           "subscription",
		"payment_status": paymentStatus,
		"metadata":       map[string]string{"userId": userID, "planId": "bloom"},
	}
	if customer != "" {
		obj["customer"] = customer
	}
	if subscription != "" {
		obj["subscription"] = subscription
	}
	return Event(eventID, "checkout.session.completed", obj)
}

// Subscription builds a customer.subscription.* event.
func Subscription(eventID, eventType, subscription, customer, status string) []byte {
	obj := map[string]interface{}{
		"id":     subscription,
		"object": "subscription",
		"status": status,
	}
	if customer != "" {
		obj["customer"] = customer
	}
	return Event(eventID, eventType, obj)
}
