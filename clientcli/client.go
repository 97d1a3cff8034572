package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout for short requests.
	// Uploads and downloads are bounded by the caller's context only.
	DefaultTimeout = 30 * time.Second
)

// Client performs operations against a cardfs server.
type Client struct {
	config     *Config
	httpClient *http.Client // list, delete, mkdir
	streamer   *http.Client // upload, download
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		c.streamer = client
	}
}

// WithTimeout sets the HTTP client timeout for non-streaming requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Normalize endpoint URL (remove trailing slash)
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     &Config{Endpoint: endpoint, MountRoot: cfg.MountRoot, Timeout: cfg.Timeout},
		httpClient: &http.Client{Timeout: cfg.Timeout},
		streamer:   &http.Client{},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the server URL the client talks to.
func (c *Client) Endpoint() string { return c.config.Endpoint }

// MountRoot returns the virtual root relative remote paths are resolved against.
func (c *Client) MountRoot() string { return c.config.MountRoot }

// Upload uploads file(s) to the server.
// For recursive uploads, walks the directory, creates the remote folders and
// preserves relative paths below opts.RemoteDir.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, opts.RemoteDir)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		// Not a directory, just upload single file
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts.RemoteDir)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remoteBase := c.remoteDir(opts.RemoteDir)

	walkErr := filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		// Check context cancellation
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Calculate relative path
		relPath, relErr := filepath.Rel(baseDir, p)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: p,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			parent := joinRemote(remoteBase, filepath.ToSlash(filepath.Dir(relPath)))
			// the folder may already exist; a real failure shows up on upload
			_ = c.Mkdir(ctx, parent, d.Name())
			return nil
		}

		remoteDir := joinRemote(remoteBase, filepath.ToSlash(filepath.Dir(relPath)))

		result, uploadErr := c.uploadSingle(ctx, p, remoteDir)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath:  p,
				RemotePath: joinRemote(remoteDir, d.Name()),
				Err:        uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams one file to the server as a multipart body. The body
// is produced through a pipe so the file is never held in memory.
func (c *Client) uploadSingle(ctx context.Context, localPath, remoteDir string) (UploadResult, error) {
	// Open the file
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	remoteDir = c.remoteDir(remoteDir)
	name := filepath.Base(localPath)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(mw, remoteDir, name, file)
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/upload", url.Values{"dir": {remoteDir}}), pr)
	if err != nil {
		_ = pr.Close()
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, status, err := c.do(c.streamer, req)
	// unblock the writer goroutine if the server stopped reading early
	_ = pr.Close()
	if err != nil {
		return UploadResult{}, err
	}
	if status != http.StatusOK {
		return UploadResult{}, parseServerError(status, body)
	}

	return UploadResult{
		LocalPath:  localPath,
		RemotePath: joinRemote(remoteDir, name),
		Size:       info.Size(),
	}, nil
}

func writeUploadBody(mw *multipart.Writer, remoteDir, name string, content io.Reader) error {
	if err := mw.WriteField("dir", remoteDir); err != nil {
		return err
	}

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

// Download downloads a file from the server.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.RemotePath == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}
	remotePath := c.remotePath(opts.RemotePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/download", url.Values{"file": {remotePath}}), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	// Execute request
	resp, err := c.streamer.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		RemotePath: remotePath,
		Size:       resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = attachmentName(resp.Header.Get("Content-Disposition"), remotePath)
	} else if fi, statErr := os.Stat(localPath); statErr == nil && fi.IsDir() {
		localPath = filepath.Join(localPath, attachmentName(resp.Header.Get("Content-Disposition"), remotePath))
	}
	result.LocalPath = localPath

	written, err := saveBody(resp.Body, localPath, opts.NoClobber)
	_ = resp.Body.Close()
	if err != nil {
		return nil, nil, err
	}

	result.Size = written
	return result, nil, nil
}

// saveBody writes body to localPath, creating parent directories. A failed
// copy removes the partial file.
func saveBody(body io.Reader, localPath string, noClobber bool) (int64, error) {
	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if noClobber {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(localPath, flags, 0o644) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(file, body)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(localPath)
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}
	return written, nil
}

// Delete deletes one or more files or folders, one request per path.
// Continues on error, collecting results for all paths.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))

	for _, p := range opts.Paths {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(ctx, p))
	}

	return results, nil
}

// deleteSingle deletes a single path from the server.
func (c *Client) deleteSingle(ctx context.Context, p string) DeleteResult {
	remotePath := c.remotePath(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/delete", url.Values{"file": {remotePath}}), http.NoBody)
	if err != nil {
		return DeleteResult{Path: p, Err: fmt.Errorf("create request: %w", err)}
	}

	body, status, err := c.do(c.httpClient, req)
	if err != nil {
		return DeleteResult{Path: p, Err: err}
	}
	if status != http.StatusOK {
		return DeleteResult{Path: p, Err: parseServerError(status, body)}
	}

	return DeleteResult{Path: p, Deleted: true}
}

// DeleteMany deletes every path in one request. The server deletes each
// path independently and reports only how many succeeded.
func (c *Client) DeleteMany(ctx context.Context, opts DeleteOptions) (*BatchDeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	files := make([]string, len(opts.Paths))
	for i, p := range opts.Paths {
		files[i] = c.remotePath(p)
	}

	payload, err := json.Marshal(map[string][]string{"files": files})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/delete-multi", nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseServerError(status, body)
	}

	var result BatchDeleteResult
	if _, err := fmt.Sscanf(string(body), "Deleted %d / %d items", &result.Succeeded, &result.Attempted); err != nil {
		return nil, fmt.Errorf("parse response %q: %w", body, err)
	}
	return &result, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List fetches the directory tree below opts.Dir.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.Dir != "" {
		query.Set("dir", c.remotePath(opts.Dir))
	}
	if opts.Depth >= 0 {
		query.Set("depth", strconv.Itoa(opts.Depth))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/list", query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, status, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseServerError(status, body)
	}

	var nodes []Node
	if err := json.Unmarshal(body, &nodes); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &ListResult{Dir: opts.Dir, Nodes: nodes}, nil
}

// Mkdir creates folder name inside parent.
func (c *Client) Mkdir(ctx context.Context, parent, name string) error {
	if name == "" {
		return fmt.Errorf("mkdir: %w", ErrEmptyName)
	}

	parent = c.remoteDir(parent)
	form := url.Values{"parent": {parent}, "name": {name}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/mkdir", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return parseServerError(status, body)
	}
	return nil
}

// TotalSize calculates the total size of all files in the tree in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	walkNodes(r.Nodes, func(n Node) {
		if n.Size != nil {
			total += int64(*n.Size)
		}
	})
	return total
}

// Count returns the number of files and folders in the tree.
func (r *ListResult) Count() (files, dirs int) {
	walkNodes(r.Nodes, func(n Node) {
		if n.IsDir() {
			dirs++
		} else {
			files++
		}
	})
	return files, dirs
}

func walkNodes(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		walkNodes(n.Children, fn)
	}
}

func (c *Client) url(route string, query url.Values) string {
	u := c.config.Endpoint + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes req and returns the full response body and status code.
func (c *Client) do(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// remotePath places p under the mount root. A path already rooted there is
// kept; anything else is taken relative to it, so "music" and "/music" both
// become "/sdcard/music". The server skips batch paths outside the mount
// root, so the client resolves them itself. An empty path stays empty and
// the server applies its own default.
func (c *Client) remotePath(p string) string {
	if p == "" {
		return ""
	}

	root := c.config.MountRoot
	rel := p
	if p == root || strings.HasPrefix(p, root+"/") {
		rel = p[len(root):]
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return root
	}
	return root + "/" + rel
}

// remoteDir is remotePath with an empty path meaning the mount root.
func (c *Client) remoteDir(p string) string {
	if p == "" {
		return c.config.MountRoot
	}
	return c.remotePath(p)
}

func joinRemote(dir, name string) string {
	if name == "" || name == "." {
		return dir
	}
	return path.Join("/", dir, name)
}

// attachmentName picks the local file name for a download: the
// Content-Disposition filename if it is a plain name, else the last segment
// of the remote path.
func attachmentName(disposition, remotePath string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" && name == filepath.Base(name) && name != ".." {
			return name
		}
	}
	return path.Base(remotePath)
}

// parseServerError wraps a non-200 response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested path does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden is returned when deleting the mount root (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrBadRequest is returned for missing parameters or malformed input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
