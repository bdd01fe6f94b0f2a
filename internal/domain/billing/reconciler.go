package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garden-ai/internal/domain/users"

	"github.com/rs/zerolog"
)

// Reconciler applies billing intents to the user store. Every write
// overwrites the billing columns, so replays and reordering converge on
// whatever the last delivered event says.
type Reconciler struct {
	store users.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewReconciler(store users.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log.With().Str("component", "reconciler").Logger(),
		now:   time.Now,
	}
}

// Apply returns a non-nil error only for faults worth a redelivery; those
// errors are *RetryableError.
func (r *Reconciler) Apply(ctx context.Context, intent Intent) (Outcome, error) {
	switch in := intent.(type) {
	case Activate:
		return r.activate(ctx, in)
	case Sync:
		return r.sync(ctx, in)
	case Deactivate:
		return r.deactivate(ctx, in)
	case Noop:
		r.log.Debug().Str("event_type", in.EventType).Str("reason", in.Reason).Msg("event ignored")
		return Outcome{Action: ActionNoop, Result: ResultNoop}, nil
	default:
		r.log.Warn().Str("intent", fmt.Sprintf("%T", intent)).Msg("unknown intent ignored")
		return Outcome{Action: ActionNoop, Result: ResultNoop}, nil
	}
}

func (r *Reconciler) activate(ctx context.Context, in Activate) (Outcome, error) {
	out := Outcome{Action: ActionActivate, UserID: in.UserID}

	user, err := r.store.FindByID(ctx, in.UserID)
	if errors.Is(err, users.ErrNotFound) {
		r.log.Error().
			Str("user_id", in.UserID).
			Str("customer_id", in.CustomerID).
			Msg("checkout references a user that does not exist")
		out.Result = ResultUserMissing
		return out, nil
	}
	if err != nil {
		out.Result = ResultFault
		return out, &RetryableError{Op: "find user by id", Err: err}
	}

	if user.HasCustomer() && *user.ExternalCustomerID != in.CustomerID {
		r.log.Error().
			Str("user_id", user.ID).
			Str("stored_customer_id", *user.ExternalCustomerID).
			Str("customer_id", in.CustomerID).
			Msg("user is already bound to a different customer")
		out.Result = ResultConflict
		return out, nil
	}

	owner, err := r.store.FindByCustomerID(ctx, in.CustomerID)
	switch {
	case errors.Is(err, users.ErrNotFound):
	case err != nil:
		out.Result = ResultFault
		return out, &RetryableError{Op: "find user by customer", Err: err}
	case owner.ID != user.ID:
		r.log.Error().
			Str("user_id", user.ID).
			Str("owner_id", owner.ID).
			Str("customer_id", in.CustomerID).
			Msg("customer already belongs to another user")
		out.Result = ResultConflict
		return out, nil
	}

	customerID, subscriptionID := in.CustomerID, in.SubscriptionID
	if err := r.store.ApplyBilling(ctx, user.ID, users.BillingChanges{
		CustomerID:     &customerID,
		SubscriptionID: &subscriptionID,
		Status:         users.StatusActive,
		UpdatedAt:      r.now(),
	}); err != nil {
		out.Result = ResultFault
		return out, &RetryableError{Op: "activate", Err: err}
	}

	r.log.Info().
		Str("user_id", user.ID).
		Str("customer_id", in.CustomerID).
		Str("subscription_id", in.SubscriptionID).
		Str("plan_id", in.PlanID).
		Msg("subscription activated")
	out.Result = ResultApplied
	return out, nil
}

func (r *Reconciler) sync(ctx context.Context, in Sync) (Outcome, error) {
	out := Outcome{Action: ActionSync}

	user, ok, err := r.byCustomer(ctx, in.CustomerID)
	if err != nil {
		out.Result = ResultFault
		return out, err
	}
	if !ok {
		out.Result = ResultRace
		return out, nil
	}
	out.UserID = user.ID

	subscriptionID := in.SubscriptionID
	if err := r.store.ApplyBilling(ctx, user.ID, users.BillingChanges{
		SubscriptionID: &subscriptionID,
		Status:         in.Status,
		UpdatedAt:      r.now(),
	}); err != nil {
		out.Result = ResultFault
		return out, &RetryableError{Op: "sync", Err: err}
	}

	r.log.Info().
		Str("user_id", user.ID).
		Str("customer_id", in.CustomerID).
		Str("status", string(in.Status)).
		Msg("subscription synced")
	out.Result = ResultApplied
	return out, nil
}

func (r *Reconciler) deactivate(ctx context.Context, in Deactivate) (Outcome, error) {
	out := Outcome{Action: ActionDeactivate}

	user, ok, err := r.byCustomer(ctx, in.CustomerID)
	if err != nil {
		out.Result = ResultFault
		return out, err
	}
	if !ok {
		out.Result = ResultRace
		return out, nil
	}
	out.UserID = user.ID

	if err := r.store.ApplyBilling(ctx, user.ID, users.BillingChanges{
		SubscriptionID: nil,
		Status:         users.StatusCancelled,
		UpdatedAt:      r.now(),
	}); err != nil {
		out.Result = ResultFault
		return out, &RetryableError{Op: "deactivate", Err: err}
	}

	r.log.Info().
		Str("user_id", user.ID).
		Str("customer_id", in.CustomerID).
		Msg("subscription cancelled")
	out.Result = ResultApplied
	return out, nil
}

// byCustomer resolves a customer id. A miss is the benign race where the
// activation has not landed yet; it is logged and reported as ok=false.
func (r *Reconciler) byCustomer(ctx context.Context, customerID string) (*users.User, bool, error) {
	user, err := r.store.FindByCustomerID(ctx, customerID)
	if errors.Is(err, users.ErrNotFound) {
		r.log.Warn().
			Str("customer_id", customerID).
			Msg("no user for customer yet, acknowledging")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &RetryableError{Op: "find user by customer", Err: err}
	}
	return user, true, nil
}
