// Package repository persists addresses, orders and the read-only product
// catalog. Three drivers implement the same interfaces: gorm/postgres,
// MongoDB and an in-memory store used by tests and local runs.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Govind-619/Clomora/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrMalformed is returned when a stored document fails validation.
	ErrMalformed = errors.New("repository: malformed document")
)

// AddressRepository stores the per-user address book.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, userID, id string) (*models.Address, error)
	Create(ctx context.Context, a *models.Address) error
	// Update overwrites every field of an existing address.
	Update(ctx context.Context, a *models.Address) error
	// Delete succeeds whether or not the address exists.
	Delete(ctx context.Context, userID, id string) error
	ClearDefaults(ctx context.Context, userID string) error
	SetDefault(ctx context.Context, userID, id string) error
}

// OrderFilter narrows admin order listings. Zero values match everything.
type OrderFilter struct {
	Status models.OrderStatus
	UserID string
	Search string
	Since  time.Time
}

// StatusUpdate is the only mutation allowed on a persisted order.
// DeliveredAt is written only when non-nil.
type StatusUpdate struct {
	Status      models.OrderStatus
	UpdatedAt   time.Time
	DeliveredAt *time.Time
}

// OrderRepository stores orders. Lists are newest first.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error)
}

// ProductRepository reads the catalog.
type ProductRepository interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.Product, error)
}

// Store bundles the repositories of one driver.
type Store struct {
	Addresses AddressRepository
	Orders    OrderRepository
	Products  ProductRepository
	Close     func(ctx context.Context) error
}

// matches applies an OrderFilter in process. Drivers that cannot push a
// filter down to the database use it on decoded documents.
func (f OrderFilter) matches(o models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		for _, field := range []string{o.ID, o.UserEmail, o.ShippingAddress.FullName, o.ShippingAddress.Phone} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
	return true
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
