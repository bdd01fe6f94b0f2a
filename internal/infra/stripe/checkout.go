package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"garden-ai/internal/domain/plans"
	"garden-ai/internal/domain/users"

	stripelib "github.com/stripe/stripe-go/v75"
)

// CheckoutSessions is the subset of the stripe checkout session client we use.
type CheckoutSessions interface {
	New(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
}

// PortalSessions is the subset of the stripe billing portal client we use.
type PortalSessions interface {
	New(params *stripelib.BillingPortalSessionParams) (*stripelib.BillingPortalSession, error)
}

type CheckoutRequest struct {
	User   users.User
	PlanID string
	Trial  bool
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

var (
	ErrProvider   = errors.New("payment provider error")
	ErrNoCustomer = errors.New("user has no billing customer")
)

// CheckoutInitiator builds checkout sessions. It never touches the user
// store: a session that is never completed must leave no trace.
type CheckoutInitiator struct {
	sessions CheckoutSessions
	portal   PortalSessions
	catalog  *plans.Catalog
	appURL   string
}

func NewCheckoutInitiator(sessions CheckoutSessions, portal PortalSessions, catalog *plans.Catalog, appURL string) *CheckoutInitiator {
	return &CheckoutInitiator{
		sessions: sessions,
		portal:   portal,
		catalog:  catalog,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// Start creates a subscription checkout session for req.User.
func (i *CheckoutInitiator) Start(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	plan, err := i.catalog.Lookup(req.PlanID)
	if err != nil {
		return nil, err
	}

	var trialDays int64
	if req.Trial {
		trialDays, err = i.catalog.TrialDays(plan.ID)
		if err != nil {
			return nil, err
		}
	}

	params := &stripelib.CheckoutSessionParams{
		Mode:                stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		SuccessURL:          stripelib.String(i.appURL + "/ask?subscribed=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:           stripelib.String(i.appURL + "/ask?cancelled=true"),
		AllowPromotionCodes: stripelib.Bool(true),
		ClientReferenceID:   stripelib.String(req.User.ID),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{Price: stripelib.String(plan.StripePriceID), Quantity: stripelib.Int64(1)},
		},
		SubscriptionData: &stripelib.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				MetadataUserID: req.User.ID,
				MetadataPlanID: plan.ID,
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, req.User.ID)
	params.AddMetadata(MetadataPlanID, plan.ID)

	if req.User.HasCustomer() {
		params.Customer = stripelib.String(*req.User.ExternalCustomerID)
	} else {
		params.CustomerEmail = stripelib.String(req.User.Email)
	}
	if trialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripelib.Int64(trialDays)
	}

	s, err := i.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrProvider, err)
	}
	if s == nil || s.ID == "" {
		return nil, fmt.Errorf("%w: checkout session has no id", ErrProvider)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// Portal opens a billing portal session for a user already linked to a
// customer.
func (i *CheckoutInitiator) Portal(ctx context.Context, user users.User) (string, error) {
	if !user.HasCustomer() {
		return "", ErrNoCustomer
	}
	params := &stripelib.BillingPortalSessionParams{
		Customer:  stripelib.String(*user.ExternalCustomerID),
		ReturnURL: stripelib.String(i.appURL + "/ask"),
	}
	params.Context = ctx

	s, err := i.portal.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create portal session: %v", ErrProvider, err)
	}
	return s.URL, nil
}
