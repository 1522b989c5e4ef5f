package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Govind-619/Clomora/cart"
	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/realtime"
	"github.com/Govind-619/Clomora/repository"
	"github.com/Govind-619/Clomora/utils"
)

// CartView is the cart as shown to the customer, priced from the live catalog.
type CartView struct {
	Key        string            `json:"key"`
	Lines      []models.CartLine `json:"lines"`
	TotalItems int               `json:"totalItems"`
	Totals     models.Totals     `json:"totals"`
}

// AddItemInput is a request to put a product in the cart.
type AddItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartService opens cart stores and keeps their lines priced. Changes to
// one cart key are applied one at a time.
type CartService struct {
	storage  cart.Storage
	products repository.ProductRepository
	broker   realtime.Publisher
	pricing  Pricing
	locks    keyLocks
}

func NewCartService(storage cart.Storage, products repository.ProductRepository, broker realtime.Publisher, pricing Pricing) *CartService {
	return &CartService{storage: storage, products: products, broker: broker, pricing: pricing}
}

// UserCartKey is the cart key of a signed-in customer.
func UserCartKey(uid string) string {
	return "user:" + uid
}

// GuestCartKey is the cart key of an anonymous session.
func GuestCartKey(guestID string) string {
	return "guest:" + guestID
}

// Open rehydrates the cart stored under key. Every committed change is
// published on the carts collection.
func (s *CartService) Open(ctx context.Context, key string) (*cart.Store, error) {
	store, err := cart.Open(ctx, s.storage, key)
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load cart", err)
	}
	s.publishOn(store, key)
	return store, nil
}

func (s *CartService) publishOn(store *cart.Store, key string) {
	store.Subscribe(func([]models.CartLine) {
		publish(context.Background(), s.broker, realtime.Change{
			Collection: realtime.CollectionCarts,
			Scope:      key,
			DocumentID: key,
			Kind:       realtime.ChangeUpdated,
		})
	})
}

// View returns the cart under key repriced from the catalog.
func (s *CartService) View(ctx context.Context, key string) (*CartView, error) {
	store, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	lines, err := s.PricedLines(ctx, store.Lines())
	if err != nil {
		return nil, err
	}
	return s.view(key, lines), nil
}

// AddItem adds a product to the cart, merging with a line of the same
// product, size and color.
func (s *CartService) AddItem(ctx context.Context, key string, in AddItemInput) (*CartView, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return nil, utils.ValidationFailed("Quantity must be at least 1", []utils.FieldValidationError{
			{Field: "quantity", Message: "must be at least 1"},
		})
	}

	product, err := s.products.Get(ctx, in.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Failed to load product")
	}
	if fields := variantErrors(*product, in.Size, in.Color); len(fields) > 0 {
		return nil, utils.ValidationFailed("Please choose an available size and color", fields)
	}

	line := models.CartLine{Product: *product, Quantity: in.Quantity, Size: in.Size, Color: in.Color}
	return s.dispatch(ctx, key, cart.Add(line))
}

// SetQuantity changes a line's quantity. Zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, key string, item models.CartKey, qty int) (*CartView, error) {
	return s.dispatch(ctx, key, cart.SetQuantity(item, qty))
}

// RemoveItem drops a line.
func (s *CartService) RemoveItem(ctx context.Context, key string, item models.CartKey) (*CartView, error) {
	return s.dispatch(ctx, key, cart.Remove(item))
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, key string) (*CartView, error) {
	return s.dispatch(ctx, key, cart.Clear())
}

// RemoveLines drops the given line keys and leaves every other line alone.
// Used after an order so lines added meanwhile stay in the cart.
func (s *CartService) RemoveLines(ctx context.Context, key string, items []models.CartKey) error {
	unlock := s.locks.lock(key)
	defer unlock()

	store, err := s.Open(ctx, key)
	if err != nil {
		return err
	}
	lines := store.Lines()
	for _, item := range items {
		lines = cart.Reduce(lines, cart.Remove(item))
	}
	_, err = store.Dispatch(ctx, cart.Load(lines))
	return err
}

// Quote prices lines with the configured shipping rule.
func (s *CartService) Quote(lines []models.CartLine) models.Totals {
	return s.pricing.Quote(lines)
}

// PricedLines swaps each line's product for the current catalog entry.
// Lines whose product has gone keep their snapshot.
func (s *CartService) PricedLines(ctx context.Context, lines []models.CartLine) ([]models.CartLine, error) {
	if len(lines) == 0 {
		return lines, nil
	}
	catalog, err := s.products.GetMany(ctx, cart.ProductIDs(lines))
	if err != nil {
		return nil, utils.PersistenceFailureError("Failed to load products", err)
	}
	return cart.Reprice(lines, catalog), nil
}

func (s *CartService) dispatch(ctx context.Context, key string, a cart.Action) (*CartView, error) {
	lines, err := s.apply(ctx, key, a)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrMissingProduct) {
			return nil, utils.ValidationFailed(err.Error(), nil)
		}
		return nil, utils.PersistenceFailureError("Failed to save cart", err)
	}
	priced, err := s.PricedLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	return s.view(key, priced), nil
}

// apply loads, reduces and saves under the key's lock so concurrent
// changes to one cart never overwrite each other.
func (s *CartService) apply(ctx context.Context, key string, a cart.Action) ([]models.CartLine, error) {
	unlock := s.locks.lock(key)
	defer unlock()

	store, err := cart.Open(ctx, s.storage, key)
	if err != nil {
		return nil, err
	}
	s.publishOn(store, key)
	return store.Dispatch(ctx, a)
}

func (s *CartService) view(key string, lines []models.CartLine) *CartView {
	return &CartView{
		Key:        key,
		Lines:      lines,
		TotalItems: cart.TotalItems(lines),
		Totals:     s.pricing.Quote(lines),
	}
}

// variantErrors checks size and color against the product's options.
// A product without options accepts any value.
func variantErrors(p models.Product, size, color string) []utils.FieldValidationError {
	var fields []utils.FieldValidationError
	if len(p.Sizes) > 0 && !containsFold(p.Sizes, size) {
		fields = append(fields, utils.FieldValidationError{Field: "size", Message: "is not available"})
	}
	if len(p.Colors) > 0 && !containsFold(p.Colors, color) {
		fields = append(fields, utils.FieldValidationError{Field: "color", Message: "is not available"})
	}
	return fields
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// keyLocks hands out one mutex per cart key and forgets it once no caller
// holds or waits for it. It serializes within one process only.
type keyLocks struct {
	mu   sync.Mutex
	held map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func (l *keyLocks) lock(key string) func() {
	l.mu.Lock()
	if l.held == nil {
		l.held = make(map[string]*keyLock)
	}
	k, ok := l.held[key]
	if !ok {
		k = &keyLock{}
		l.held[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.Lock()
	return func() {
		k.Unlock()
		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.held, key)
		}
		l.mu.Unlock()
	}
}
