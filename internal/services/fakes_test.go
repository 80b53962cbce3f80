package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/shopuz/payments-service/pkg/database"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/views"
)

var errNotImplemented = errors.New("not implemented in fake")

// fakeTxRunner satisfies database.TxRunner without a live pool. The in-memory
// stores below do their own locking, so fn simply runs with a nil tx.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// memStore backs the repository fakes. The single mutex stands in for the
// serialization the real uniqueness constraints provide.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	products map[uuid.UUID]models.Product
	orders   map[string]models.Order
	txns     map[string]models.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]models.User),
		products: make(map[uuid.UUID]models.Product),
		orders:   make(map[string]models.Order),
		txns:     make(map[string]models.Transaction),
	}
}

func corrKey(userID, productID uuid.UUID) string {
	return userID.String() + "/" + productID.String()
}

var (
	insertedTag = pgconn.NewCommandTag("INSERT 0 1")
	conflictTag = pgconn.NewCommandTag("INSERT 0 0")
)

type fakeUserRepo struct {
	store *memStore
}

func (f *fakeUserRepo) FindById(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	user, ok := f.store.users[userID]
	if !ok {
		return models.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) FindByIdRead(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error) {
	return f.FindById(ctx, nil, userID)
}

func (f *fakeUserRepo) SetStripeCustomerID(ctx context.Context, db *database.DB, userID uuid.UUID, customerID string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	user, ok := f.store.users[userID]
	if !ok || user.StripeCustomerID != nil {
		return false, nil
	}
	user.StripeCustomerID = &customerID
	f.store.users[userID] = user
	return true, nil
}

func (f *fakeUserRepo) ListCustomers(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.CustomerView, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeUserRepo) Create(ctx context.Context, db *database.DB, user models.User) (uuid.UUID, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	user.ID = uuid.New()
	f.store.users[user.ID] = user
	return user.ID, nil
}

type fakeProductRepo struct {
	store *memStore
}

func (f *fakeProductRepo) FindById(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (models.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	product, ok := f.store.products[productID]
	if !ok {
		return models.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (f *fakeProductRepo) FindByIdRead(ctx context.Context, db *database.DB, productID uuid.UUID) (models.Product, error) {
	return f.FindById(ctx, nil, productID)
}

func (f *fakeProductRepo) Create(ctx context.Context, db *database.DB, product models.Product) (uuid.UUID, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	product.ID = uuid.New()
	f.store.products[product.ID] = product
	return product.ID, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, db *database.DB, productID uuid.UUID, req views.ProductRequest) (models.Product, error) {
	return models.Product{}, errNotImplemented
}

func (f *fakeProductRepo) SetStripeRefs(ctx context.Context, db *database.DB, productID uuid.UUID, productRef, priceRef string) error {
	return errNotImplemented
}

func (f *fakeProductRepo) SetStripePriceRef(ctx context.Context, db *database.DB, productID uuid.UUID, priceRef string) error {
	return errNotImplemented
}

func (f *fakeProductRepo) Delete(ctx context.Context, db *database.DB, productID uuid.UUID) error {
	return errNotImplemented
}

func (f *fakeProductRepo) List(ctx context.Context, db *database.DB, q views.ListQuery) ([]models.Product, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeProductRepo) ListFavorites(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]models.Product, bool, error) {
	return nil, false, errNotImplemented
}

type fakeOrderRepo struct {
	store *memStore
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx pgx.Tx, order models.Order) (pgconn.CommandTag, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := corrKey(order.UserID, order.ProductID)
	if _, exists := f.store.orders[key]; exists {
		return conflictTag, nil
	}
	order.ID = uuid.New()
	f.store.orders[key] = order
	return insertedTag, nil
}

func (f *fakeOrderRepo) ExistsByCorrelation(ctx context.Context, tx pgx.Tx, userID, productID uuid.UUID) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	_, exists := f.store.orders[corrKey(userID, productID)]
	return exists, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, db *database.DB, orderID uuid.UUID, status pkg.OrderStatus) (models.Order, error) {
	return models.Order{}, errNotImplemented
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.OrderView, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.OrderView, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeOrderRepo) CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error) {
	return 0, errNotImplemented
}

type fakeTxnRepo struct {
	store *memStore
}

func (f *fakeTxnRepo) Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := corrKey(txn.UserID, txn.ProductID)
	if _, exists := f.store.txns[key]; exists {
		return conflictTag, nil
	}
	txn.ID = uuid.New()
	f.store.txns[key] = txn
	return insertedTag, nil
}

func (f *fakeTxnRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, q views.ListQuery) ([]views.TransactionView, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeTxnRepo) ListAll(ctx context.Context, db *database.DB, q views.ListQuery) ([]views.TransactionView, bool, error) {
	return nil, false, errNotImplemented
}

func (f *fakeTxnRepo) CountByUser(ctx context.Context, db *database.DB, userID uuid.UUID) (int64, error) {
	return 0, errNotImplemented
}

// fakeNotifier records notifications; safe for concurrent use.
type fakeNotifier struct {
	mu            sync.Mutex
	successes     int
	failures      int
	statusChanges int
	lastAmount    int64
}

func (f *fakeNotifier) NotifySuccess(user models.User, product models.Product, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes++
	f.lastAmount = amount
}

func (f *fakeNotifier) NotifyFailure(user models.User, product models.Product, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
	f.lastAmount = amount
}

func (f *fakeNotifier) NotifyStatusChange(user models.User, product models.Product, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanges++
}

func (f *fakeNotifier) Close() {}

// fakeGateway lets each test plug in just the calls it expects.
type fakeGateway struct {
	verifyAndParse        func(payload []byte, sigHeader string) (gateway.Event, error)
	createCustomer        func(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error)
	createCheckoutSession func(ctx context.Context, customerID, priceRef string, key gateway.CorrelationKey) (string, error)
}

func (f *fakeGateway) VerifyAndParse(payload []byte, sigHeader string) (gateway.Event, error) {
	return f.verifyAndParse(payload, sigHeader)
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, email, fullName string, userID uuid.UUID) (string, error) {
	return f.createCustomer(ctx, email, fullName, userID)
}

func (f *fakeGateway) CreateProduct(ctx context.Context, title, image string, key gateway.CorrelationKey) (string, error) {
	return "", errNotImplemented
}

func (f *fakeGateway) CreatePrice(ctx context.Context, productRef string, unitAmount int64, key gateway.CorrelationKey) (string, error) {
	return "", errNotImplemented
}

func (f *fakeGateway) DeactivateProduct(ctx context.Context, productRef string) error {
	return errNotImplemented
}

func (f *fakeGateway) DeactivatePrice(ctx context.Context, priceRef string) error {
	return errNotImplemented
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, customerID, priceRef string, key gateway.CorrelationKey) (string, error) {
	return f.createCheckoutSession(ctx, customerID, priceRef, key)
}
