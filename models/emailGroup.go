package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// EmailGroupMember is one newsletter subscription.
type EmailGroupMember struct {
	ID           int       `gorm:"primary_key" json:"id"`
	EmailGroup   string    `gorm:"index:idx_group_email,unique;size:140;not null" json:"email_group"`
	Email        string    `gorm:"index:idx_group_email,unique;size:255;not null" json:"email"`
	Unsubscribed bool      `gorm:"not null;default:false" json:"unsubscribed"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsSubscribed reports whether an address already belongs to the group and
// has not unsubscribed.
func IsSubscribed(ctx context.Context, db *gorm.DB, emailGroup string, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&EmailGroupMember{}).
		Where("email_group = ? AND email = ? AND unsubscribed = ?", emailGroup, email, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func Subscribe(ctx context.Context, db *gorm.DB, emailGroup string, email string) error {
	return db.WithContext(ctx).Create(&EmailGroupMember{
		EmailGroup: emailGroup,
		Email:      email,
	}).Error
}
