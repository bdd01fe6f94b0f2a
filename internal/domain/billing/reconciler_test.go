package billing_test

import (
	"context"
	"errors"
	"testing"

	"garden-ai/internal/domain/billing"
	"garden-ai/internal/domain/users"
	"garden-ai/internal/infra/db"
	"garden-ai/internal/infra/db/dbtest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, ids ...string) (*billing.Reconciler, *db.UserRepo) {
	t.Helper()
	repo := db.NewUserRepo(dbtest.Open(t))
	for _, id := range ids {
		require.NoError(t, repo.Create(context.Background(), &users.User{ID: id, Email: id + "@garden.test"}))
	}
	return billing.NewReconciler(repo, zerolog.Nop()), repo
}

func mustFind(t *testing.T, repo *db.UserRepo, id string) *users.User {
	t.Helper()
	u, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func apply(t *testing.T, r *billing.Reconciler, in billing.Intent) billing.Outcome {
	t.Helper()
	out, err := r.Apply(context.Background(), in)
	require.NoError(t, err)
	return out
}

var activateU1 = billing.Activate{UserID: "u1", CustomerID: "cus_1", SubscriptionID: "sub_1", PlanID: "bloom"}

func TestActivateLinksUser(t *testing.T) {
	r, repo := setup(t, "u1")

	out := apply(t, r, activateU1)
	assert.Equal(t, billing.Outcome{Action: billing.ActionActivate, Result: billing.ResultApplied, UserID: "u1"}, out)

	u := mustFind(t, repo, "u1")
	assert.Equal(t, "cus_1", *u.ExternalCustomerID)
	assert.Equal(t, "sub_1", *u.ExternalSubscriptionID)
	assert.Equal(t, users.StatusActive, u.SubscriptionStatus)
}

func TestActivateIsIdempotent(t *testing.T) {
	r, repo := setup(t, "u1")

	apply(t, r, activateU1)
	first := mustFind(t, repo, "u1")
	out := apply(t, r, activateU1)
	second := mustFind(t, repo, "u1")

	assert.Equal(t, billing.ResultApplied, out.Result)
	assert.Equal(t, *first.ExternalCustomerID, *second.ExternalCustomerID)
	assert.Equal(t, *first.ExternalSubscriptionID, *second.ExternalSubscriptionID)
	assert.Equal(t, first.SubscriptionStatus, second.SubscriptionStatus)
}

func TestActivateUnknownUser(t *testing.T) {
	r, _ := setup(t)

	out := apply(t, r, activateU1)
	assert.Equal(t, billing.ResultUserMissing, out.Result)
}

func TestActivateConflicts(t *testing.T) {
	t.Run("customer owned by another user", func(t *testing.T) {
		r, repo := setup(t, "u1", "u2")
		apply(t, r, activateU1)

		out := apply(t, r, billing.Activate{UserID: "u2", CustomerID: "cus_1", SubscriptionID: "sub_2"})
		assert.Equal(t, billing.ResultConflict, out.Result)
		assert.Nil(t, mustFind(t, repo, "u2").ExternalCustomerID)
	})

	t.Run("user bound to another customer", func(t *testing.T) {
		r, repo := setup(t, "u1")
		apply(t, r, activateU1)

		out := apply(t, r, billing.Activate{UserID: "u1", CustomerID: "cus_9", SubscriptionID: "sub_9"})
		assert.Equal(t, billing.ResultConflict, out.Result)
		assert.Equal(t, "cus_1", *mustFind(t, repo, "u1").ExternalCustomerID)
	})
}

func TestDeactivateCancels(t *testing.T) {
	r, repo := setup(t, "u1")
	apply(t, r, activateU1)

	out := apply(t, r, billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"})
	assert.Equal(t, billing.Outcome{Action: billing.ActionDeactivate, Result: billing.ResultApplied, UserID: "u1"}, out)

	u := mustFind(t, repo, "u1")
	assert.Equal(t, users.StatusCancelled, u.SubscriptionStatus)
	assert.Nil(t, u.ExternalSubscriptionID)
	assert.Equal(t, "cus_1", *u.ExternalCustomerID)

	// replay
	apply(t, r, billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"})
	assert.Equal(t, users.StatusCancelled, mustFind(t, repo, "u1").SubscriptionStatus)
}

func TestSyncAdoptsStatus(t *testing.T) {
	r, repo := setup(t, "u1")
	apply(t, r, activateU1)

	apply(t, r, billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusPastDue})
	assert.Equal(t, users.StatusPastDue, mustFind(t, repo, "u1").SubscriptionStatus)

	apply(t, r, billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: "unpaid"})
	assert.Equal(t, users.SubscriptionStatus("unpaid"), mustFind(t, repo, "u1").SubscriptionStatus)
}

func TestLastWriteWins(t *testing.T) {
	r, repo := setup(t, "u1")
	apply(t, r, activateU1)

	// deletion delivered before a stale update
	apply(t, r, billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"})
	apply(t, r, billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusActive})
	assert.Equal(t, users.StatusActive, mustFind(t, repo, "u1").SubscriptionStatus)

	apply(t, r, billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"})
	assert.Equal(t, users.StatusCancelled, mustFind(t, repo, "u1").SubscriptionStatus)
}

func TestUnknownCustomerIsRace(t *testing.T) {
	r, repo := setup(t, "u1")

	out := apply(t, r, billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusActive})
	assert.Equal(t, billing.ResultRace, out.Result)
	out = apply(t, r, billing.Deactivate{CustomerID: "cus_1", SubscriptionID: "sub_1"})
	assert.Equal(t, billing.ResultRace, out.Result)

	assert.Equal(t, users.StatusNone, mustFind(t, repo, "u1").SubscriptionStatus)
}

func TestNoopLeavesStoreAlone(t *testing.T) {
	store := &faultyStore{}
	r := billing.NewReconciler(store, zerolog.Nop())

	out := apply(t, r, billing.Noop{EventType: "checkout.session.completed", Reason: "unpaid"})
	assert.Equal(t, billing.ResultNoop, out.Result)
	assert.Zero(t, store.calls)
}

// faultyStore fails every call.
type faultyStore struct {
	users.Store
	calls int
}

var errDown = errors.New("connection refused")

func (s *faultyStore) FindByID(context.Context, string) (*users.User, error) {
	s.calls++
	return nil, errDown
}

func (s *faultyStore) FindByCustomerID(context.Context, string) (*users.User, error) {
	s.calls++
	return nil, errDown
}

func TestStoreFaultIsRetryable(t *testing.T) {
	r := billing.NewReconciler(&faultyStore{}, zerolog.Nop())

	for _, in := range []billing.Intent{
		activateU1,
		billing.Sync{CustomerID: "cus_1", Status: users.StatusActive},
		billing.Deactivate{CustomerID: "cus_1"},
	} {
		out, err := r.Apply(context.Background(), in)
		require.Error(t, err, in.Action())
		assert.True(t, billing.IsRetryable(err))
		assert.ErrorIs(t, err, errDown)
		assert.Equal(t, billing.ResultFault, out.Result)
	}
}

func TestSyncOrderDecides(t *testing.T) {
	pastDue := billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusPastDue}
	active := billing.Sync{CustomerID: "cus_1", SubscriptionID: "sub_1", Status: users.StatusActive}

	tests := []struct {
		name  string
		order []billing.Intent
		want  users.SubscriptionStatus
	}{
		{"past_due then active", []billing.Intent{pastDue, active}, users.StatusActive},
		{"active then past_due", []billing.Intent{active, pastDue}, users.StatusPastDue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := setup(t, "u1")
			apply(t, r, activateU1)
			for _, in := range tt.order {
				apply(t, r, in)
			}
			assert.Equal(t, tt.want, mustFind(t, repo, "u1").SubscriptionStatus)
		})
	}
}

func TestDeactivateBeforeActivateCreatesNothing(t *testing.T) {
	r, repo := setup(t)

	out := apply(t, r, billing.Deactivate{CustomerID: "cus_new", SubscriptionID: "sub_new"})
	assert.Equal(t, billing.ResultRace, out.Result)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
