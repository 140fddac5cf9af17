package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	Paths       []string
	ContentType string // optional, detected per file if empty
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string `json:"local_path"`
	ID          string `json:"id"`
	Location    string `json:"location"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
	Err         error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	ID        string
	LocalPath string // empty = <ID>.<ext>, "-" = stdout
	Raw       bool   // use /images/{id}/data instead of /images/{id}
}

// DownloadResult represents the result of downloading an image.
type DownloadResult struct {
	ID          string `json:"id"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	IDs []string
}

// DeleteResult represents the result of deleting a single image.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListResult contains every identifier the server reported.
type ListResult struct {
	IDs []string `json:"ids"`
}

// MetadataResult holds what the server reports about a stored image.
type MetadataResult struct {
	ID string `json:"id"`
}
