package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	RemoteDir string // directory on the card; empty means the mount root
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Size       int64  `json:"size_bytes"`
	Err        error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	// LocalPath is the destination file. Empty means the name the server
	// sends, in the current directory; an existing directory receives that
	// name inside it; "-" returns the body to the caller.
	LocalPath string
	// NoClobber fails with os.ErrExist instead of overwriting a local file.
	NoClobber bool
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	Size       int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single path.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// BatchDeleteResult is the tally reported by a batch delete.
type BatchDeleteResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// ListOptions configures a list operation.
type ListOptions struct {
	Dir   string // empty = mount root
	Depth int    // negative = server default
}

// ListResult holds the listed directory tree.
type ListResult struct {
	Dir   string `json:"dir"`
	Nodes []Node `json:"nodes"`
}

// Node is one entry of a directory tree as returned by the server.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"` // "file" or "dir"
	Size     *uint64 `json:"size,omitempty"`
	Children []Node  `json:"children,omitzero"`
}

// IsDir reports whether the node is a directory.
func (n Node) IsDir() bool { return n.Type == "dir" }
