package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/cart"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/notification"
	"github.com/Govind-619/Clomora/payment"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	amounts []decimal.Decimal
	err     error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string) (*models.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.amounts = append(g.amounts, amount)
	if g.err != nil {
		return nil, g.err
	}
	return &models.GatewayOrder{
		ID:       "order_" + receipt,
		Amount:   payment.ToSubunits(amount),
		Currency: "INR",
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notification.OrderNotice
	err     error
}

func (n *recordingNotifier) NotifyOrderPlaced(_ context.Context, notice notification.OrderNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

type failingOrders struct {
	repository.OrderRepository
}

func (failingOrders) Create(context.Context, *models.Order) error {
	return errors.New("write refused")
}

type fixture struct {
	store     *repository.Store
	products  *repository.MemoryProducts
	hub       *realtime.Hub
	storage   *cart.MemoryStorage
	gateway   *fakeGateway
	notifier  *recordingNotifier
	addresses *AddressService
	carts     *CartService
	writer    *OrderWriter
	checkout  *CheckoutService
	status    *OrderStatusService
	queries   *OrderQueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, products := repository.NewMemoryStore()
	f := &fixture{
		store:    store,
		products: products,
		hub:      realtime.NewHub(),
		storage:  cart.NewMemoryStorage(),
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
	}
	f.addresses = NewAddressService(store.Addresses, f.hub)
	f.carts = NewCartService(f.storage, products, f.hub, DefaultPricing())
	f.writer = NewOrderWriter(store.Orders, f.carts, f.notifier, f.hub, nil, DefaultPricing())
	f.writer.async = func(fn func()) { fn() }
	orchestrator := payment.NewOrchestrator(f.gateway, testSecret)
	f.checkout = NewCheckoutService(f.carts, store.Addresses, orchestrator, f.writer, nil, "rzp_test_key")
	f.status = NewOrderStatusService(store.Orders, f.hub)
	f.queries = NewOrderQueryService(store.Orders, f.hub, "INR")
	return f
}

func (f *fixture) product(id string, price int64) models.Product {
	p := models.Product{
		ID:          id,
		Name:        "Product " + id,
		Price:       decimal.NewFromInt(price),
		Images:      []string{"https://cdn.example.com/" + id + ".jpg"},
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"Black"},
		IsPublished: true,
	}
	f.products.Put(p)
	return p
}

func (f *fixture) address(t *testing.T, uid string, isDefault bool) *models.Address {
	t.Helper()
	a, err := f.addresses.Add(context.Background(), uid, models.AddressInput{
		FullName:     "Asha Rao",
		Phone:        "9876543210",
		Email:        "asha@example.com",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		Pincode:      "560001",
		IsDefault:    isDefault,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) fillCart(t *testing.T, key, productID string, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), key, AddItemInput{ProductID: productID, Quantity: qty, Size: "M", Color: "Black"})
	require.NoError(t, err)
}

func (f *fixture) cartLines(t *testing.T, key string) []models.CartLine {
	t.Helper()
	store, err := cart.Open(context.Background(), f.storage, key)
	require.NoError(t, err)
	return store.Lines()
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	orders, err := f.store.Orders.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	return len(orders)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
