package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
	"gorm.io/gorm"
)

// NewGormStore returns a Store backed by the given gorm connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Addresses: &GormAddresses{db: db},
		Orders:    &GormOrders{db: db},
		Products:  &GormProducts{db: db},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func gormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// GormAddresses stores addresses in the addresses table.
type GormAddresses struct {
	db *gorm.DB
}

func (r *GormAddresses) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	var rows []models.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	out := make([]models.Address, 0, len(rows))
	for _, a := range rows {
		if err := a.Validate(); err != nil {
			utils.LogError("Skipping malformed address: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *GormAddresses) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	var a models.Address
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, gormErr(err)
	}
	return &a, nil
}

func (r *GormAddresses) Create(ctx context.Context, a *models.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *GormAddresses) Update(ctx context.Context, a *models.Address) error {
	res := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", a.ID, a.UserID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAddresses) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{}).Error
}

func (r *GormAddresses) ClearDefaults(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (r *GormAddresses) SetDefault(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormOrders stores orders in the orders table.
type GormOrders struct {
	db *gorm.DB
}

func (r *GormOrders) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *GormOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, gormErr(err)
	}
	if err := o.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &o, nil
}

func (r *GormOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, OrderFilter{UserID: userID})
}

func (r *GormOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("LOWER(status) = LOWER(?)", string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"id ILIKE ? OR user_email ILIKE ? OR shipping_address->>'fullName' ILIKE ? OR shipping_address->>'phone' ILIKE ?",
			like, like, like, like,
		)
	}

	var rows []models.Order
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, o := range rows {
		if err := o.Normalize(); err != nil {
			utils.LogError("Skipping malformed order: %v", err)
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *GormOrders) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error) {
	fields := map[string]interface{}{
		"status":     upd.Status,
		"updated_at": upd.UpdatedAt,
	}
	if upd.DeliveredAt != nil {
		fields["delivered_at"] = *upd.DeliveredAt
	}

	var updated *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var o models.Order
		if err := tx.Where("id = ?", id).First(&o).Error; err != nil {
			return gormErr(err)
		}
		updated = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := updated.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return updated, nil
}

// GormProducts reads the products table.
type GormProducts struct {
	db *gorm.DB
}

func (r *GormProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, gormErr(err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

func (r *GormProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	ids = uniqueIDs(ids)
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range rows {
		if err := p.Validate(); err != nil {
			utils.LogError("Skipping malformed product: %v", err)
			continue
		}
		out[p.ID] = p
	}
	return out, nil
}
