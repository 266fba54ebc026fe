package service

import "context"

// SyncServiceInterface defines the contract for remote template-pack
// synchronization.
type SyncServiceInterface interface {
	// SyncTemplatePacks mirrors remote template folders into the local
	// templates tree and reloads the library. downloaded = new template
	// folders fetched, skipped = already present locally, total = remote
	// folders seen.
	SyncTemplatePacks(ctx context.Context, folderID string) (downloaded, skipped, total int, err error)
}
