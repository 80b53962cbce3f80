package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reconcileFixture struct {
	store    *memStore
	notifier *fakeNotifier
	svc      ReconcileService
	key      gateway.CorrelationKey
	price    int64
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	store := newMemStore()

	user := models.User{ID: uuid.New(), Email: "buyer@example.com", FullName: "Buyer One", Role: pkg.RoleUser}
	store.users[user.ID] = user
	product := models.Product{ID: uuid.New(), Title: "laptop", Price: 1_250_000}
	store.products[product.ID] = product

	notifier := &fakeNotifier{}
	svc := NewReconcileService(
		zap.NewNop(),
		fakeTxRunner{},
		&fakeUserRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeOrderRepo{store: store},
		&fakeTxnRepo{store: store},
		notifier,
	)
	return &reconcileFixture{
		store:    store,
		notifier: notifier,
		svc:      svc,
		key:      gateway.CorrelationKey{UserID: user.ID, ProductID: product.ID},
		price:    product.Price,
	}
}

func TestCommitSuccess_CreatesOrderAndLedgerEntry(t *testing.T) {
	f := newReconcileFixture(t)

	err := f.svc.CommitSuccess(context.Background(), "trace-1", f.key)
	require.NoError(t, err)

	k := corrKey(f.key.UserID, f.key.ProductID)
	order, ok := f.store.orders[k]
	require.True(t, ok, "order must be created")
	assert.Equal(t, pkg.OrderStatusCreated, order.Status)
	assert.Equal(t, f.price, order.Price, "order price comes from the catalog")

	txn, ok := f.store.txns[k]
	require.True(t, ok, "ledger entry must be created")
	assert.Equal(t, pkg.TransactionPaid, txn.State)
	assert.Equal(t, f.price, txn.Amount)
	assert.Equal(t, pkg.PaymentProvider, txn.Provider)

	assert.Equal(t, 1, f.notifier.successes)
	assert.Equal(t, f.price, f.notifier.lastAmount)
}

func TestCommitSuccess_RedeliveryIsNoOp(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CommitSuccess(ctx, "trace-1", f.key))
	require.NoError(t, f.svc.CommitSuccess(ctx, "trace-2", f.key))

	assert.Len(t, f.store.orders, 1)
	assert.Len(t, f.store.txns, 1)
	assert.Equal(t, 1, f.notifier.successes, "redelivery must not re-notify")
}

func TestCommitFailure_RecordsLedgerEntryWithoutOrder(t *testing.T) {
	f := newReconcileFixture(t)

	err := f.svc.CommitFailure(context.Background(), "trace-1", f.key)
	require.NoError(t, err)

	k := corrKey(f.key.UserID, f.key.ProductID)
	txn, ok := f.store.txns[k]
	require.True(t, ok)
	assert.Equal(t, pkg.TransactionPaidCanceled, txn.State)

	assert.Empty(t, f.store.orders, "a failed payment never creates an order")
	assert.Equal(t, 1, f.notifier.failures)
	assert.Zero(t, f.notifier.successes)
}

func TestCommitSuccess_AfterFailureKeepsFirstOutcome(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CommitFailure(ctx, "trace-1", f.key))
	require.NoError(t, f.svc.CommitSuccess(ctx, "trace-2", f.key))

	k := corrKey(f.key.UserID, f.key.ProductID)
	txn := f.store.txns[k]
	assert.Equal(t, pkg.TransactionPaidCanceled, txn.State, "first terminal event wins")
	assert.Empty(t, f.store.orders)
	assert.Zero(t, f.notifier.successes)
}

func TestCommitSuccess_UnknownUserWritesNothing(t *testing.T) {
	f := newReconcileFixture(t)
	badKey := gateway.CorrelationKey{UserID: uuid.New(), ProductID: f.key.ProductID}

	err := f.svc.CommitSuccess(context.Background(), "trace-1", badKey)
	require.Error(t, err)

	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkg.ErrCorrelationNotFoundCode, appErr.Code)

	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.store.txns)
	assert.Zero(t, f.notifier.successes)
}

func TestCommitSuccess_UnknownProductWritesNothing(t *testing.T) {
	f := newReconcileFixture(t)
	badKey := gateway.CorrelationKey{UserID: f.key.UserID, ProductID: uuid.New()}

	err := f.svc.CommitSuccess(context.Background(), "trace-1", badKey)
	require.Error(t, err)

	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkg.ErrCorrelationNotFoundCode, appErr.Code)
	assert.Empty(t, f.store.txns)
}

func TestCommitSuccess_ConcurrentRedeliveries(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.CommitSuccess(ctx, "trace-c", f.key))
		}()
	}
	wg.Wait()

	assert.Len(t, f.store.orders, 1, "exactly one order regardless of concurrency")
	assert.Len(t, f.store.txns, 1, "exactly one ledger entry regardless of concurrency")
	assert.Equal(t, 1, f.notifier.successes, "exactly one notification")
}
