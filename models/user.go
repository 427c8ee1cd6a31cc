package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email" binding:"required,email"`
	FirstName string    `gorm:"size:140" json:"first_name"`
	LastName  string    `gorm:"size:140" json:"last_name"`
	Phone     string    `gorm:"index;size:30" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	UserType  string    `gorm:"size:30;default:Website User" json:"user_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func UserExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error) {
	var user User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// identifierComparands returns the forms a login identifier is matched
// under: the lowercased raw input plus its E.164 form. Phones are stored
// normalized, so a local-format number has to be normalized before it can
// match the phone column.
func identifierComparands(identifier string) (string, string) {
	lowered := strings.ToLower(strings.TrimSpace(identifier))
	return lowered, utils.NormalizePhone(identifier)
}

// FindEnabledUserByIdentifier searches case-insensitively across username,
// email and phone, returning the first enabled match.
func FindEnabledUserByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*User, error) {
	lowered, phone := identifierComparands(identifier)
	var user User
	err := db.WithContext(ctx).
		Where("enabled = ?", true).
		Where("LOWER(username) = ? OR LOWER(email) = ? OR LOWER(IFNULL(phone, '')) = ? OR phone = ?",
			lowered, lowered, lowered, phone).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SplitContactName splits a display name into first/last the way the
// registration form expects.
func SplitContactName(contactName string) (string, string) {
	contactName = strings.TrimSpace(contactName)
	if contactName == "" {
		return "", ""
	}
	parts := strings.SplitN(contactName, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
