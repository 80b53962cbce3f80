package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolve_ReturnsExistingIdentityWithoutGatewayCall(t *testing.T) {
	store := newMemStore()
	existing := "cus_existing"
	user := models.User{ID: uuid.New(), Email: "a@example.com", StripeCustomerID: &existing}
	store.users[user.ID] = user

	gw := &fakeGateway{
		createCustomer: func(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error) {
			t.Fatal("gateway must not be called when an identity exists")
			return "", nil
		},
	}
	r := NewCustomerResolver(zap.NewNop(), nil, &fakeUserRepo{store: store}, gw)

	got, err := r.Resolve(context.Background(), "trace-1", user.ID)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestResolve_CreatesIdentityLazily(t *testing.T) {
	store := newMemStore()
	user := models.User{ID: uuid.New(), Email: "a@example.com", FullName: "A"}
	store.users[user.ID] = user

	gw := &fakeGateway{
		createCustomer: func(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error) {
			assert.Equal(t, user.Email, email)
			assert.Equal(t, user.ID, userID)
			return "cus_new", nil
		},
	}
	r := NewCustomerResolver(zap.NewNop(), nil, &fakeUserRepo{store: store}, gw)

	got, err := r.Resolve(context.Background(), "trace-1", user.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", got)

	stored := store.users[user.ID]
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_new", *stored.StripeCustomerID)
}

func TestResolve_UnknownUser(t *testing.T) {
	r := NewCustomerResolver(zap.NewNop(), nil, &fakeUserRepo{store: newMemStore()}, &fakeGateway{})

	_, err := r.Resolve(context.Background(), "trace-1", uuid.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "no records found")
}

func TestResolve_ConcurrentCallsConvergeOnOneIdentity(t *testing.T) {
	store := newMemStore()
	user := models.User{ID: uuid.New(), Email: "a@example.com", FullName: "A"}
	store.users[user.ID] = user

	var created int64
	gw := &fakeGateway{
		createCustomer: func(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error) {
			n := atomic.AddInt64(&created, 1)
			return fmt.Sprintf("cus_%d", n), nil
		},
	}
	r := NewCustomerResolver(zap.NewNop(), nil, &fakeUserRepo{store: store}, gw)

	const n = 16
	results := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			got, err := r.Resolve(context.Background(), "trace-c", user.ID)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	stored := store.users[user.ID]
	require.NotNil(t, stored.StripeCustomerID)
	for i := 0; i < n; i++ {
		assert.Equal(t, *stored.StripeCustomerID, results[i], "every caller sees the winning identity")
	}
}
