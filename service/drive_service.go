package service

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveService handles Google Drive API operations for remote template
// packs: a shared Drive folder contains one subfolder per template, laid
// out exactly like the local templates tree (metadata.json plus asset
// rasters).
type DriveService struct {
	client *drive.Service
}

// NewDriveService creates a DriveService authenticated with a Service
// Account credentials file.
func NewDriveService(credentialsPath string) (*DriveService, error) {
	ctx := context.Background()

	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// ListTemplateFolders lists the per-template subfolders of a Drive folder.
func (ds *DriveService) ListTemplateFolders(folderID string) ([]RemoteFolder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed=false", folderID)

	var folders []RemoteFolder
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list template folders: %w", err)
		}
		for _, f := range r.Files {
			folders = append(folders, RemoteFolder{ID: f.Id, Name: f.Name})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return folders, nil
}

// ListFolderFiles lists the files inside one template folder.
func (ds *DriveService) ListFolderFiles(folderID string) ([]RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != 'application/vnd.google-apps.folder' and trashed=false", folderID)

	var files []RemoteFile
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list folder files: %w", err)
		}
		for _, f := range r.Files {
			files = append(files, RemoteFile{ID: f.Id, Name: f.Name})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return files, nil
}

// DownloadFile fetches one file's content.
func (ds *DriveService) DownloadFile(fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}
