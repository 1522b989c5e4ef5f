package models

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Address is a customer's shipping address. Stored under users/{uid}/addresses.
type Address struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	UserID       string    `json:"userId" gorm:"index;not null;type:varchar(128)" bson:"userId"`
	FullName     string    `json:"fullName" bson:"fullName"`
	Phone        string    `json:"phone" bson:"phone"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	AddressLine1 string    `json:"addressLine1" bson:"addressLine1"`
	AddressLine2 string    `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string    `json:"city" bson:"city"`
	State        string    `json:"state" bson:"state"`
	Pincode      string    `json:"pincode" bson:"pincode"`
	Landmark     string    `json:"landmark,omitempty" bson:"landmark,omitempty"`
	IsDefault    bool      `json:"isDefault" gorm:"default:false" bson:"isDefault"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// AddressInput is the form payload for a new address.
type AddressInput struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Landmark     string `json:"landmark"`
	IsDefault    bool   `json:"isDefault"`
}

// AddressPatch carries a partial update; nil fields are left unchanged.
type AddressPatch struct {
	FullName     *string `json:"fullName"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Pincode      *string `json:"pincode"`
	Landmark     *string `json:"landmark"`
	IsDefault    *bool   `json:"isDefault"`
}

// ToAddress builds an address owned by userID from the form input.
func (in AddressInput) ToAddress(userID string) Address {
	return Address{
		UserID:       userID,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Email:        in.Email,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
		Landmark:     in.Landmark,
		IsDefault:    in.IsDefault,
	}
}

// Apply copies every non-nil field of the patch onto a.
func (p AddressPatch) Apply(a *Address) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.FullName, p.FullName)
	set(&a.Phone, p.Phone)
	set(&a.Email, p.Email)
	set(&a.AddressLine1, p.AddressLine1)
	set(&a.AddressLine2, p.AddressLine2)
	set(&a.City, p.City)
	set(&a.State, p.State)
	set(&a.Pincode, p.Pincode)
	set(&a.Landmark, p.Landmark)
	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
}

// MakesDefault reports whether the patch promotes the address to default.
func (p AddressPatch) MakesDefault() bool {
	return p.IsDefault != nil && *p.IsDefault
}

// SortAddresses orders the default address first, then newest first.
func SortAddresses(addresses []Address) {
	sort.SliceStable(addresses, func(i, j int) bool {
		a, b := addresses[i], addresses[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Validate rejects stored documents missing their identity.
func (a Address) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("address: missing id")
	}
	if strings.TrimSpace(a.UserID) == "" {
		return errors.New("address: missing userId")
	}
	return nil
}
