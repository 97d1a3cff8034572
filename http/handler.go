package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/cardfs"
	"github.com/sagarc03/cardfs/metrics"
)

const (
	defaultChunkSize   = 4096
	defaultMetricsPath = "/metrics"
	maxDeleteBody      = 1 << 20
	maxFieldSize       = 4096
	maxMkdirMemory     = 1 << 20
)

type Service interface {
	List(ctx context.Context, query cardfs.ListQuery) ([]cardfs.TreeNode, error)
	Download(ctx context.Context, path cardfs.VirtualPath) (*cardfs.Download, error)
	Delete(ctx context.Context, path cardfs.VirtualPath) error
	NewUpload(dirHint, filename string) (*cardfs.UploadSink, error)
	Mkdir(ctx context.Context, parent, name string) error
	DeleteMany(ctx context.Context, files []cardfs.VirtualPath) cardfs.DeleteOutcome
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	ChunkSize      int   // bytes per streamed chunk (default: 4096)
	MaxUploadSize  int64 // 0 means unlimited
	CORS           CORSConfig
	MetricsEnabled bool
	MetricsPath    string
}

// Handler provides HTTP handlers for the file management operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = defaultMetricsPath
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LogRequests)
	r.Use(middleware.Recoverer)
	if h.config.MetricsEnabled {
		r.Use(RecordMetrics)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/list", h.handleList)
	r.Get("/download", h.handleDownload)
	r.Get("/delete", h.handleDelete)
	r.Delete("/delete", h.handleDelete)
	r.Post("/delete-multi", h.handleDeleteMulti)
	r.Post("/upload", h.handleUpload)
	r.Post("/mkdir", h.handleMkdir)

	if h.config.MetricsEnabled {
		r.Method(http.MethodGet, h.config.MetricsPath, metrics.Handler())
	}

	r.NotFound(writeNotFound)

	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := cardfs.ListQuery{
		Dir:   cardfs.VirtualPath(r.URL.Query().Get("dir")),
		Depth: -1,
	}

	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		depth, err := strconv.Atoi(depthStr)
		if err != nil || depth < 0 {
			WriteText(w, http.StatusBadRequest, "invalid depth")
			return
		}
		query.Depth = depth
	}

	nodes, err := h.service.List(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, nodes)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		WriteText(w, http.StatusBadRequest, "missing file param")
		return
	}

	d, err := h.service.Download(r.Context(), cardfs.VirtualPath(file))
	if err != nil {
		if errors.Is(err, cardfs.ErrNotFound) {
			WriteText(w, http.StatusNotFound, "file not found")
		} else {
			HandleError(w, err)
		}
		metrics.RecordDownload(0, false)
		return
	}
	defer func() { _ = d.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", contentDisposition(d.Name()))
	w.WriteHeader(http.StatusOK)

	sent, err := h.stream(w, d)
	if err != nil {
		slog.Warn("download aborted", "file", file, "bytes", sent, "error", err)
	}
	metrics.RecordDownload(sent, err == nil)
}

// stream copies d to w one chunk at a time, flushing after every chunk so
// the client sees the body as it is read.
func (h *Handler) stream(w http.ResponseWriter, d *cardfs.Download) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, h.config.ChunkSize)

	var sent int64
	for {
		n, rerr := d.Read(buf)
		if n > 0 {
			written, werr := w.Write(buf[:n])
			sent += int64(written)
			if werr != nil {
				return sent, werr
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return sent, ferr
			}
		}
		if rerr == io.EOF {
			return sent, nil
		}
		if rerr != nil {
			return sent, rerr
		}
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		WriteText(w, http.StatusBadRequest, "missing file param")
		return
	}

	err := h.service.Delete(r.Context(), cardfs.VirtualPath(file))
	if err != nil {
		metrics.RecordDelete(1, 0)
		switch {
		case errors.Is(err, cardfs.ErrForbidden):
			slog.Warn("refusing to delete mount root", "file", file)
			WriteText(w, http.StatusForbidden, "cannot delete root folder")
		case errors.Is(err, cardfs.ErrNotFound):
			WriteText(w, http.StatusNotFound, "not found")
		case errors.Is(err, cardfs.ErrInvalidInput):
			WriteText(w, http.StatusBadRequest, "invalid path")
		default:
			slog.Error("delete failed", "file", file, "error", err)
			WriteText(w, http.StatusInternalServerError, "delete failed")
		}
		return
	}

	metrics.RecordDelete(1, 1)
	WriteText(w, http.StatusOK, "deleted")
}

type deleteMultiRequest struct {
	Files []cardfs.VirtualPath `json:"files"`
}

func (h *Handler) handleDeleteMulti(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		WriteText(w, http.StatusBadRequest, "expected json")
		return
	}

	var req deleteMultiRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeleteBody)).Decode(&req); err != nil {
		WriteText(w, http.StatusBadRequest, "bad json")
		return
	}

	out := h.service.DeleteMany(r.Context(), req.Files)
	metrics.RecordDelete(out.Attempted, out.Succeeded)

	WriteText(w, http.StatusOK, fmt.Sprintf("Deleted %d / %d items", out.Succeeded, out.Attempted))
}

// handleUpload streams every file part of a multipart body to its own
// upload session. The destination directory comes from the "dir" query
// parameter or from a "dir" field sent before the file part.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		WriteText(w, http.StatusBadRequest, "expected multipart")
		return
	}

	dirHint := r.URL.Query().Get("dir")
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if tooLarge(err) {
				WriteText(w, http.StatusRequestEntityTooLarge, "upload too large")
				return
			}
			slog.Warn("upload: reading multipart body failed", "error", err)
			break
		}

		switch {
		case part.FileName() != "":
			if err := h.receive(r.Context(), part, dirHint); tooLarge(err) {
				_ = part.Close()
				WriteText(w, http.StatusRequestEntityTooLarge, "upload too large")
				return
			}
		case part.FormName() == "dir":
			if v, err := io.ReadAll(io.LimitReader(part, maxFieldSize)); err == nil {
				dirHint = string(v)
			}
		}
		_ = part.Close()
	}

	WriteText(w, http.StatusOK, "upload ok")
}

// receive writes one file part through an upload session. It returns the
// error that cut the part short, if any.
// receive stores one file part. A part whose name is rejected is logged and
// skipped without failing the request; the other parts are still stored and
// the response stays "upload ok".
func (h *Handler) receive(ctx context.Context, part *multipart.Part, dirHint string) error {
	sink, err := h.service.NewUpload(dirHint, part.FileName())
	if err != nil {
		slog.Warn("upload rejected", "file", part.FileName(), "error", err)
		metrics.RecordUpload(0, false)
		return nil
	}
	defer func() { _ = sink.Close() }()

	err = sink.Pump(ctx, part, h.config.ChunkSize)
	if err != nil {
		slog.Warn("upload aborted", "session", sink.ID(), "path", sink.Destination(), "error", err)
	}

	metrics.RecordUpload(sink.BytesWritten(), err == nil && !sink.Failed())
	return err
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (h *Handler) handleMkdir(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMkdirMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		WriteText(w, http.StatusBadRequest, "bad form")
		return
	}

	parent := r.FormValue("parent")
	name := r.FormValue("name")
	if parent == "" || name == "" {
		WriteText(w, http.StatusBadRequest, "missing parent or name")
		return
	}

	if err := h.service.Mkdir(r.Context(), parent, name); err != nil {
		if errors.Is(err, cardfs.ErrInvalidInput) {
			WriteText(w, http.StatusBadRequest, "invalid name")
			return
		}
		slog.Error("mkdir failed", "parent", parent, "name", name, "error", err)
		WriteText(w, http.StatusInternalServerError, "mkdir failed")
		return
	}

	WriteText(w, http.StatusOK, "mkdir ok")
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func contentDisposition(name string) string {
	return `attachment; filename="` + dispositionEscaper.Replace(name) + `"`
}
