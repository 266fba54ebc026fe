package service

// RemoteFile describes one file inside a remote template pack.
type RemoteFile struct {
	ID   string
	Name string
}

// RemoteFolder describes one remote per-template folder.
type RemoteFolder struct {
	ID   string
	Name string
}

// DriveServiceInterface defines the contract for remote template-pack
// storage operations.
type DriveServiceInterface interface {
	ListTemplateFolders(folderID string) ([]RemoteFolder, error)
	ListFolderFiles(folderID string) ([]RemoteFile, error)
	DownloadFile(fileID string) ([]byte, error)
}
