package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SyncService mirrors remote template packs from Google Drive into the
// local templates tree. Per-folder failures are skipped with a warning;
// they reduce the synced set rather than aborting the whole run.
type SyncService struct {
	driveService DriveServiceInterface
	templates    *TemplateManager
}

// NewSyncService creates a new SyncService.
func NewSyncService(driveService DriveServiceInterface, templates *TemplateManager) *SyncService {
	return &SyncService{
		driveService: driveService,
		templates:    templates,
	}
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// SyncTemplatePacks downloads every remote template folder that does not
// exist locally yet, then force-reloads the library so the scanner picks
// up the new directories.
func (s *SyncService) SyncTemplatePacks(ctx context.Context, folderID string) (downloaded, skipped, total int, err error) {
	log := logrus.WithField("folder_id", folderID)
	log.Info("Starting template pack synchronization")

	folders, err := s.driveService.ListTemplateFolders(folderID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list remote template folders: %w", err)
	}
	total = len(folders)

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return downloaded, skipped, total, err
		}

		localDir := filepath.Join(s.templates.RootDir(), folder.Name)
		if _, err := os.Stat(localDir); err == nil {
			logrus.WithField("template", folder.Name).Debug("Template pack already present, skipping")
			skipped++
			continue
		}

		if err := s.downloadFolder(folder, localDir); err != nil {
			logrus.WithError(err).WithField("template", folder.Name).Warn("Failed to sync template pack, skipping")
			continue
		}
		downloaded++
	}

	if downloaded > 0 {
		// The persisted index predates the new packs; only a directory
		// rescan discovers them.
		if _, err := s.templates.Rescan(); err != nil {
			log.WithError(err).Warn("Failed to rescan library after sync")
		}
	}

	log.WithFields(logrus.Fields{
		"downloaded": downloaded,
		"skipped":    skipped,
		"total":      total,
	}).Info("Template pack synchronization completed")
	return downloaded, skipped, total, nil
}

// downloadFolder mirrors one remote template folder into localDir. Any
// failure removes the partial directory so a later run retries cleanly.
func (s *SyncService) downloadFolder(folder RemoteFolder, localDir string) error {
	files, err := s.driveService.ListFolderFiles(folder.ID)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("remote folder is empty")
	}

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return fmt.Errorf("failed to create local directory: %w", err)
	}

	for _, file := range files {
		data, err := s.driveService.DownloadFile(file.ID)
		if err != nil {
			os.RemoveAll(localDir)
			return fmt.Errorf("failed to download %s: %w", file.Name, err)
		}
		if err := os.WriteFile(filepath.Join(localDir, filepath.Base(file.Name)), data, 0644); err != nil {
			os.RemoveAll(localDir)
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	logrus.WithFields(logrus.Fields{"template": folder.Name, "files": len(files)}).Info("Template pack downloaded")
	return nil
}
