// Package http provides the HTTP server for cardfs.
//
// It exposes the file management operations of cardfs.FileService as a small
// set of routes used by the browser control panel and by cardfs-cli. Status
// responses are plain text; listings are JSON.
//
// # Routes
//
//	GET  /list?dir=&depth=     JSON array of tree nodes
//	GET  /download?file=       chunked octet-stream attachment
//	GET  /delete?file=         "deleted" (DELETE is accepted too)
//	POST /delete-multi         {"files":[...]} -> "Deleted X / Y items"
//	POST /upload               multipart file part(s), optional "dir"
//	POST /mkdir                form fields "parent" and "name"
//	GET  /metrics              Prometheus metrics, when enabled
//
// # Features
//
//   - Streaming upload and download in fixed-size chunks, never buffering a whole file
//   - Request IDs, panic recovery and one log line per request
//   - Optional Prometheus metrics labelled by route pattern
//   - Configurable CORS support
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    ChunkSize:      4096,
//	    MetricsEnabled: true,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":5708", handler.Router())
//
// The service parameter must implement the Service interface, which
// *cardfs.FileService does.
//
// # Errors
//
// HandleError maps the cardfs sentinel errors to status codes:
// ErrNotFound to 404, ErrInvalidInput to 400, ErrForbidden to 403 and
// everything else to 500.
package http
