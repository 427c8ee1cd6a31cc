package google

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
)

const folderMimeType = "application/vnd.google-apps.folder"

// BackupResult summarizes one account's upload run.
type BackupResult struct {
	AccountId int      `json:"account_id"`
	Email     string   `json:"email"`
	FolderId  string   `json:"folder_id"`
	Uploaded  []string `json:"uploaded"`
	Failed    []string `json:"failed"`
}

// DispatchBackups publishes one backup job per enabled account. Each account
// is then processed independently; one broken account never blocks another.
func DispatchBackups(ctx context.Context, db *gorm.DB, correlationId string) (int, error) {
	accounts, err := models.GetEnabledBackupAccounts(ctx, db)
	if err != nil {
		return 0, err
	}

	logger := config.GetLogger()
	dispatched := 0
	for _, account := range accounts {
		_, err := config.PublishBackupJob(ctx, config.BackupJobMessage{
			AccountId:     account.ID,
			Email:         account.Email,
			CorrelationId: correlationId,
		})
		if err != nil {
			config.LogError(logger, "google", "DispatchBackups", "publish backup job", account.Email, err)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// RunBackupForAccount uploads the current backup set to one account's Drive.
// The main folder is found or created once and its id cached on the record;
// every run gets a fresh dated subfolder. A single failed file is logged and
// skipped, the run carries on, and last_backup_on is stamped at the end.
func RunBackupForAccount(ctx context.Context, db *gorm.DB, account *models.GoogleDriveCredentials) (*BackupResult, error) {
	logger := config.GetLogger()

	service, err := NewDriveService(ctx, account)
	if err != nil {
		return nil, err
	}

	folderId := account.BackupFolderId
	if folderId == "" {
		folderId, err = findOrCreateFolder(ctx, service, account.BackupFolderName)
		if err != nil {
			return nil, err
		}
		if err := models.SetBackupFolderId(ctx, db, account.ID, folderId); err != nil {
			return nil, err
		}
	}

	dateFolderId, err := createDatedFolder(ctx, service, folderId, time.Now())
	if err != nil {
		return nil, err
	}

	files, err := collectBackupFiles(backupDir(), account.FileBackup)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{AccountId: account.ID, Email: account.Email, FolderId: dateFolderId}
	for _, path := range files {
		if err := uploadFile(ctx, service, dateFolderId, path); err != nil {
			config.LogError(logger, "google", "RunBackupForAccount", "upload backup file", path, err)
			result.Failed = append(result.Failed, filepath.Base(path))
			continue
		}
		result.Uploaded = append(result.Uploaded, filepath.Base(path))
	}

	if err := models.SetLastBackupOn(ctx, db, account.ID, time.Now()); err != nil {
		return nil, err
	}
	if account.SendEmailNotification && account.NotificationMail != "" {
		logger.WithField("mail", account.NotificationMail).
			WithField("uploaded", len(result.Uploaded)).
			WithField("failed", len(result.Failed)).
			Info("backup notification")
	}
	return result, nil
}

func backupDir() string {
	if dir := os.Getenv("BACKUP_DIR"); dir != "" {
		return dir
	}
	return "./backups"
}

// findOrCreateFolder looks the named folder up by exact name, creating it
// when absent. Trashed folders are never reused.
func findOrCreateFolder(ctx context.Context, service *drive.Service, name string) (string, error) {
	query := "name='" + strings.ReplaceAll(name, "'", "\\'") +
		"' and mimeType='" + folderMimeType + "' and trashed=false"
	list, err := service.Files.List().Q(query).Spaces("drive").Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := service.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

func createDatedFolder(ctx context.Context, service *drive.Service, parentId string, now time.Time) (string, error) {
	folder, err := service.Files.Create(&drive.File{
		Name:     DatedFolderName(now),
		MimeType: folderMimeType,
		Parents:  []string{parentId},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

// DatedFolderName names the per-run subfolder after the run timestamp.
func DatedFolderName(now time.Time) string {
	return now.Format("2006-01-02_15-04-05")
}

func uploadFile(ctx context.Context, service *drive.Service, folderId string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = service.Files.Create(&drive.File{
		Name:    filepath.Base(path),
		Parents: []string{folderId},
	}).Media(f, googleapi.ContentType("application/gzip")).Fields("id").Context(ctx).Do()
	return err
}

func collectBackupFiles(dir string, fileBackup bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	selected := SelectBackupFiles(names, fileBackup)
	paths := make([]string, 0, len(selected))
	for _, name := range selected {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// SelectBackupFiles picks which files from the backup directory belong in the
// upload set: database dumps always, file archives only when the account opts
// into file backups. Output is sorted for a stable upload order.
func SelectBackupFiles(names []string, fileBackup bool) []string {
	selected := make([]string, 0, len(names))
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".sql.gz"):
			selected = append(selected, name)
		case fileBackup && (strings.HasSuffix(name, ".tar") || strings.HasSuffix(name, ".tar.gz")):
			selected = append(selected, name)
		}
	}
	sort.Strings(selected)
	return selected
}
