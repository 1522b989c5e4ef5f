package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read-only catalog entry referenced by carts and orders.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Slug        string          `json:"slug" gorm:"index" bson:"slug"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2)" bson:"price"`
	Images      []string        `json:"images" gorm:"serializer:json;type:jsonb" bson:"images"`
	Category    string          `json:"category" bson:"category"`
	Sizes       []string        `json:"sizes" gorm:"serializer:json;type:jsonb" bson:"sizes"`
	Colors      []string        `json:"colors" gorm:"serializer:json;type:jsonb" bson:"colors"`
	IsPublished bool            `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Validate rejects catalog documents that cannot be sold.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product: missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product: missing name")
	}
	if p.Price.IsNegative() {
		return errors.New("product: negative price")
	}
	return nil
}

// NormalizeImages collapses the legacy image fields into one list.
// imageUrls wins over images, which wins over the single image field.
func NormalizeImages(imageURLs, images []string, image string) []string {
	pick := func(list []string) []string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if out := pick(imageURLs); len(out) > 0 {
		return out
	}
	if out := pick(images); len(out) > 0 {
		return out
	}
	if image = strings.TrimSpace(image); image != "" {
		return []string{image}
	}
	return []string{}
}
