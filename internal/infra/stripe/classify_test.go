package stripe

import (
	"encoding/json"
	"errors"
	"testing"

	"garden-ai/internal/domain/billing"
	"garden-ai/internal/domain/users"
	"garden-ai/internal/infra/stripe/stripetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripelib "github.com/stripe/stripe-go/v75"
)

func decodeEvent(t *testing.T, payload []byte) stripelib.Event {
	t.Helper()
	var e stripelib.Event
	require.NoError(t, json.Unmarshal(payload, &e))
	return e
}

func TestClassifyCheckoutPaid(t *testing.T) {
	e := decodeEvent(t, stripetest.CheckoutCompleted("evt_1", "paid", "u1", "cus_1", "sub_1"))

	intent, err := Classify(e)
	require.NoError(t, err)
	assert.Equal(t, billing.Activate{
		UserID:         "u1",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		PlanID:         "bloom",
	}, intent)
}

func TestClassifyCheckoutTrialActivates(t *testing.T) {
	e := decodeEvent(t, stripetest.CheckoutCompleted("evt_1", "no_payment_required", "u1", "cus_1", "sub_1"))

	intent, err := Classify(e)
	require.NoError(t, err)
	assert.Equal(t, billing.ActionActivate, intent.Action())
}

func TestClassifyCheckoutUnpaidIsNoop(t *testing.T) {
	e := decodeEvent(t, stripetest.CheckoutCompleted("evt_1", "unpaid", "u1", "cus_1", "sub_1"))

	intent, err := Classify(e)
	require.NoError(t, err)
	assert.Equal(t, billing.ActionNoop, intent.Action())
}

func TestClassifyCheckoutFallsBackToClientReference(t *testing.T) {
	payload := stripetest.Event("evt_1", EventCheckoutCompleted, map[string]interface{}{
		"id":                  "cs_1",
		"payment_status":      "paid",
		"client_reference_id": "u9",
		"customer":            "cus_9",
		"subscription":        "sub_9",
	})

	intent, err := Classify(decodeEvent(t, payload))
	require.NoError(t, err)
	act, ok := intent.(billing.Activate)
	require.True(t, ok)
	assert.Equal(t, "u9", act.UserID)
}

func TestClassifyCheckoutMissingData(t *testing.T) {
	e := decodeEvent(t, stripetest.CheckoutCompleted("evt_1", "paid", "", "cus_1", ""))

	_, err := Classify(e)
	var missing *billing.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"metadata.userId", "subscription"}, missing.Fields)
}

func TestClassifySubscriptionEvents(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		status    string
		want      billing.Intent
	}{
		{"created", EventSubscriptionCreated, "active",
			billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusActive}},
		{"updated past due", EventSubscriptionUpdated, "past_due",
			billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusPastDue}},
		{"updated canceled", EventSubscriptionUpdated, "canceled",
			billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusCancelled}},
		{"deleted", EventSubscriptionDeleted, "canceled",
			billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := decodeEvent(t, stripetest.Subscription("evt_1", tt.eventType, "sub_1", "cus_1", tt.status))
			intent, err := Classify(e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, intent)
		})
	}
}

func TestClassifySubscriptionMissingCustomer(t *testing.T) {
	e := decodeEvent(t, stripetest.Subscription("evt_1", EventSubscriptionDeleted, "sub_1", "", "canceled"))

	_, err := Classify(e)
	var missing *billing.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"customer"}, missing.Fields)
}

func TestClassifyUnknownEventIsNoop(t *testing.T) {
	e := decodeEvent(t, stripetest.Event("evt_1", "invoice.paid", map[string]interface{}{"id": "in_1"}))

	intent, err := Classify(e)
	require.NoError(t, err)
	assert.Equal(t, billing.ActionNoop, intent.Action())
}

func TestClassifyUndecodableObject(t *testing.T) {
	e := decodeEvent(t, stripetest.Event("evt_1", EventSubscriptionUpdated, map[string]interface{}{
		"id":     "sub_1",
		"status": 42,
	}))

	_, err := Classify(e)
	require.Error(t, err)
	var missing *billing.MissingDataError
	assert.False(t, errors.As(err, &missing))
}
