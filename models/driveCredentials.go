package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GoogleDriveCredentials holds one account's offsite-backup configuration.
// The refresh token is stored encrypted at rest by the column's application
// key; this layer only ever passes it through to the OAuth exchange.
type GoogleDriveCredentials struct {
	ID                    int        `gorm:"primary_key" json:"id"`
	Email                 string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	ClientId              string     `gorm:"size:255;not null" json:"-"`
	ClientSecret          string     `gorm:"size:255;not null" json:"-"`
	RefreshToken          string     `gorm:"size:512" json:"-"`
	EnableBackup          bool       `gorm:"index;not null;default:false" json:"enable_backup"`
	FileBackup            bool       `gorm:"not null;default:false" json:"file_backup"`
	BackupFolderName      string     `gorm:"size:140;default:erp-backups" json:"backup_folder_name"`
	BackupFolderId        string     `gorm:"size:140" json:"backup_folder_id"`
	SendEmailNotification bool       `gorm:"not null;default:false" json:"send_email_notification"`
	NotificationMail      string     `gorm:"size:255" json:"notification_mail"`
	LastBackupOn          *time.Time `json:"last_backup_on"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetEnabledBackupAccounts lists every account with backups switched on.
func GetEnabledBackupAccounts(ctx context.Context, db *gorm.DB) ([]GoogleDriveCredentials, error) {
	var accounts []GoogleDriveCredentials
	err := db.WithContext(ctx).Where("enable_backup = ?", true).Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func GetBackupAccountById(ctx context.Context, db *gorm.DB, id int) (*GoogleDriveCredentials, error) {
	var account GoogleDriveCredentials
	err := db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SetBackupFolderId persists the Drive folder id after first creation so
// later runs reuse it.
func SetBackupFolderId(ctx context.Context, db *gorm.DB, id int, folderId string) error {
	return db.WithContext(ctx).Model(&GoogleDriveCredentials{}).
		Where("id = ?", id).
		Update("backup_folder_id", folderId).Error
}

func SetLastBackupOn(ctx context.Context, db *gorm.DB, id int, at time.Time) error {
	return db.WithContext(ctx).Model(&GoogleDriveCredentials{}).
		Where("id = ?", id).
		Update("last_backup_on", at).Error
}
