package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"gorm.io/gorm"
)

type Address struct {
	ID           int       `gorm:"primary_key" json:"id"`
	CustomerId   int       `gorm:"index;not null" json:"customer_id"`
	AddressTitle string    `gorm:"size:140" json:"address_title"`
	AddressType  string    `gorm:"size:30;default:Shipping" json:"address_type"`
	AddressLine1 string    `gorm:"size:255;not null" json:"address_line1" binding:"required"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:140;not null" json:"city" binding:"required"`
	State        string    `gorm:"size:140" json:"state"`
	Country      string    `gorm:"size:140" json:"country"`
	Pincode      string    `gorm:"size:20" json:"pincode"`
	Phone        string    `gorm:"size:30" json:"phone"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetCustomerAddresses(ctx context.Context, db *gorm.DB, customerId int) ([]Address, error) {
	var addresses []Address
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerId).
		Order("is_primary DESC, id").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetOwnedAddress fetches an address and enforces ownership. A mismatch is
// Forbidden, never silently corrected.
func GetOwnedAddress(ctx context.Context, db *gorm.DB, customerId int, addressId int) (*Address, error) {
	var address Address
	err := db.WithContext(ctx).First(&address, addressId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if address.CustomerId != customerId {
		return nil, utils.ErrForbidden
	}
	return &address, nil
}

func CreateCustomerAddress(ctx context.Context, db *gorm.DB, address *Address) error {
	address.Phone = utils.NormalizePhone(address.Phone)
	return db.WithContext(ctx).Create(address).Error
}

func UpdateCustomerAddress(ctx context.Context, db *gorm.DB, customerId int, address *Address) error {
	existing, err := GetOwnedAddress(ctx, db, customerId, address.ID)
	if err != nil {
		return err
	}
	address.CustomerId = existing.CustomerId
	address.Phone = utils.NormalizePhone(address.Phone)
	return db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"address_title": address.AddressTitle,
		"address_type":  address.AddressType,
		"address_line1": address.AddressLine1,
		"address_line2": address.AddressLine2,
		"city":          address.City,
		"state":         address.State,
		"country":       address.Country,
		"pincode":       address.Pincode,
		"phone":         address.Phone,
		"is_primary":    address.IsPrimary,
	}).Error
}

func DeleteCustomerAddress(ctx context.Context, db *gorm.DB, customerId int, addressId int) error {
	existing, err := GetOwnedAddress(ctx, db, customerId, addressId)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(existing).Error
}
