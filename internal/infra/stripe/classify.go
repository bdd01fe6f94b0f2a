package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"garden-ai/internal/domain/billing"

	stripelib "github.com/stripe/stripe-go/v75"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Metadata keys written on checkout sessions and read back from events.
const (
	MetadataUserID = "userId"
	MetadataPlanID = "planId"
)

var errNoEventData = errors.New("event has no data object")

// Classify maps a verified event to a billing intent. Events lacking fields
// the intent needs produce *billing.MissingDataError; undecodable objects
// produce a plain error.
func Classify(event stripelib.Event) (billing.Intent, error) {
	eventType := string(event.Type)

	switch eventType {
	case EventCheckoutCompleted:
		var session stripelib.CheckoutSession
		if err := decodeObject(event, &session); err != nil {
			return nil, err
		}
		return classifyCheckout(eventType, &session)

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripelib.Subscription
		if err := decodeObject(event, &sub); err != nil {
			return nil, err
		}
		return classifySubscription(eventType, &sub)

	default:
		return billing.Noop{EventType: eventType, Reason: "unhandled event type"}, nil
	}
}

func classifyCheckout(eventType string, s *stripelib.CheckoutSession) (billing.Intent, error) {
	// Trial checkouts settle with nothing due today and still link the user.
	if s.PaymentStatus != stripelib.CheckoutSessionPaymentStatusPaid &&
		s.PaymentStatus != stripelib.CheckoutSessionPaymentStatusNoPaymentRequired {
		return billing.Noop{
			EventType: eventType,
			Reason:    fmt.Sprintf("payment status %q", s.PaymentStatus),
		}, nil
	}

	in := billing.Activate{
		UserID:         strings.TrimSpace(s.Metadata[MetadataUserID]),
		PlanID:         strings.TrimSpace(s.Metadata[MetadataPlanID]),
		CustomerID:     customerID(s.Customer),
		SubscriptionID: subscriptionID(s.Subscription),
	}
	if in.UserID == "" {
		in.UserID = strings.TrimSpace(s.ClientReferenceID)
	}

	var missing []string
	if in.UserID == "" {
		missing = append(missing, "metadata."+MetadataUserID)
	}
	if in.CustomerID == "" {
		missing = append(missing, "customer")
	}
	if in.SubscriptionID == "" {
		missing = append(missing, "subscription")
	}
	if len(missing) > 0 {
		return nil, &billing.MissingDataError{EventType: eventType, Fields: missing}
	}
	return in, nil
}

func classifySubscription(eventType string, sub *stripelib.Subscription) (billing.Intent, error) {
	cus := customerID(sub.Customer)
	if cus == "" {
		return nil, &billing.MissingDataError{EventType: eventType, Fields: []string{"customer"}}
	}

	if eventType == EventSubscriptionDeleted {
		return billing.Deactivate{CustomerID: cus, SubscriptionID: sub.ID}, nil
	}
	return billing.Sync{
		CustomerID:     cus,
		SubscriptionID: sub.ID,
		Status:         AdoptStatus(string(sub.Status)),
	}, nil
}

func decodeObject(event stripelib.Event, v interface{}) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%s %s: %w", event.Type, event.ID, errNoEventData)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("decode %s %s: %w", event.Type, event.ID, err)
	}
	return nil
}

func customerID(c *stripelib.Customer) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.ID)
}

func subscriptionID(s *stripelib.Subscription) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.ID)
}
