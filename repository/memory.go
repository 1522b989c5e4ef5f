package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Govind-619/Clomora/models"
)

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() (*Store, *MemoryProducts) {
	products := NewMemoryProducts()
	return &Store{
		Addresses: NewMemoryAddresses(),
		Orders:    NewMemoryOrders(),
		Products:  products,
		Close:     func(context.Context) error { return nil },
	}, products
}

// MemoryAddresses is an in-memory AddressRepository.
type MemoryAddresses struct {
	mu   sync.RWMutex
	byID map[string]models.Address
}

func NewMemoryAddresses() *MemoryAddresses {
	return &MemoryAddresses{byID: make(map[string]models.Address)}
}

func (r *MemoryAddresses) ListByUser(_ context.Context, userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Address{}
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	models.SortAddresses(out)
	return out, nil
}

func (r *MemoryAddresses) Get(_ context.Context, userID, id string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAddresses) Create(_ context.Context, a *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = *a
	return nil
}

func (r *MemoryAddresses) Update(_ context.Context, a *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok || cur.UserID != a.UserID {
		return ErrNotFound
	}
	r.byID[a.ID] = *a
	return nil
}

func (r *MemoryAddresses) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok && a.UserID == userID {
		delete(r.byID, id)
	}
	return nil
}

func (r *MemoryAddresses) ClearDefaults(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.byID {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.byID[id] = a
		}
	}
	return nil
}

func (r *MemoryAddresses) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	a.IsDefault = true
	r.byID[id] = a
	return nil
}

// MemoryOrders is an in-memory OrderRepository.
type MemoryOrders struct {
	mu   sync.RWMutex
	byID map[string]models.Order
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{byID: make(map[string]models.Order)}
}

func (r *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = cloneOrder(*o)
	return nil
}

func (r *MemoryOrders) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, OrderFilter{UserID: userID})
}

func (r *MemoryOrders) List(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.byID {
		if filter.matches(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrders) UpdateStatus(_ context.Context, id string, upd StatusUpdate) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = upd.Status
	o.UpdatedAt = upd.UpdatedAt
	if upd.DeliveredAt != nil {
		t := *upd.DeliveredAt
		o.DeliveredAt = &t
	}
	r.byID[id] = o
	o = cloneOrder(o)
	return &o, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	return o
}

// MemoryProducts is an in-memory ProductRepository with a Put for seeding.
type MemoryProducts struct {
	mu   sync.RWMutex
	byID map[string]models.Product
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{byID: make(map[string]models.Product)}
}

// Put inserts or replaces a catalog entry.
func (r *MemoryProducts) Put(p models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
}

// Load decodes a JSON array of products and puts every valid one.
func (r *MemoryProducts) Load(src io.Reader) (int, error) {
	var products []models.Product
	if err := json.NewDecoder(src).Decode(&products); err != nil {
		return 0, fmt.Errorf("decode products: %w", err)
	}
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("product %d: %w", i, err)
		}
	}
	for _, p := range products {
		r.Put(p)
	}
	return len(products), nil
}

// Remove deletes a catalog entry.
func (r *MemoryProducts) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *MemoryProducts) Get(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProducts) GetMany(_ context.Context, ids []string) (map[string]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.Product, len(ids))
	for _, id := range uniqueIDs(ids) {
		if p, ok := r.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
