package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ruteri/sites-portal-backend/api"
	"github.com/ruteri/sites-portal-backend/fetcher"
	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/metrics"
	"github.com/ruteri/sites-portal-backend/storage"
)

// Error messages returned to callers.
const (
	msgNameRequired    = "Name parameter is required"
	msgInvalidURL      = "Invalid URL format."
	msgInvalidProtocol = "URL must use http or https protocol."
	msgUnresolvable    = "Could not resolve portal object ID from the provided URL."
	msgNoBlobTable     = "Could not find the blob table in the Portal object."
	msgNoResource      = "Could not find the requested resource in the Portal object."
	msgUnavailable     = "Service temporarily unavailable"
	msgUnavailableInfo = "Unable to connect to blockchain network"
	msgInternal        = "An internal server error occurred."
	msgInternalInfo    = "Internal server error"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Response is the body sent to the caller.
	Response api.ErrorResponse

	// Err is the underlying error. It is logged, never sent.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Response.Error
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// SiteFetcher runs the portal pipeline for a site URL.
type SiteFetcher interface {
	FetchSite(ctx context.Context, u *url.URL) (*fetcher.SiteContents, error)
	FetchURL(ctx context.Context, u *url.URL) (*fetcher.Payload, error)
}

// Handler serves the portal API.
type Handler struct {
	fetcher SiteFetcher
	cfg     api.PortalConfig
	log     *slog.Logger
	metrics *metrics.Collector
}

// NewHandler creates a new portal API handler. collector may be nil.
func NewHandler(siteFetcher SiteFetcher, cfg api.PortalConfig, log *slog.Logger, collector *metrics.Collector) *Handler {
	return &Handler{
		fetcher: siteFetcher,
		cfg:     cfg,
		log:     log,
		metrics: collector,
	}
}

// HandleFetchBlobs returns every servable file of the site addressed by the
// name query parameter.
//
// URL format: GET /api/fetch-blobs?name=<url>
//
// Response: api.FetchBlobsResponse, with empty data when the site holds no
// resources. Files that could not be fetched are reported per entry.
func (h *Handler) HandleFetchBlobs(w http.ResponseWriter, r *http.Request) {
	siteURL, reqErr := parseNameParam(r)
	if reqErr != nil {
		h.writeError(w, r, api.FetchBlobsPath, reqErr)
		return
	}

	contents, err := h.fetcher.FetchSite(r.Context(), siteURL)
	if errors.Is(err, interfaces.ErrSiteEmpty) {
		h.writeJSON(w, api.FetchBlobsPath, http.StatusOK, api.FetchBlobsResponse{
			Success: true,
			Message: api.MessageEmptySite,
		})
		return
	}
	if err != nil {
		h.writeError(w, r, api.FetchBlobsPath, h.classify(err, msgUnresolvable))
		return
	}

	results := make(map[string]api.BlobResult, len(contents.Entries))
	for name, entry := range contents.Entries {
		results[name] = blobResult(entry)
	}

	h.writeJSON(w, api.FetchBlobsPath, http.StatusOK, api.FetchBlobsResponse{
		Success: true,
		Message: api.MessageFetched,
		Data: api.FetchBlobsData{
			Results:   results,
			ObjectID:  contents.ObjectID.Hex(),
			TimeStamp: contents.FetchedAt.UTC().Format(timestampLayout),
			Network:   h.cfg.Network,
		},
	})
}

// HandleFetchResource returns the raw bytes of the file addressed by the
// path of the name query parameter, with the headers recorded for it.
//
// URL format: GET /api/fetch-resource?name=<url>
//
// An empty site is answered with 200 and no body.
func (h *Handler) HandleFetchResource(w http.ResponseWriter, r *http.Request) {
	siteURL, reqErr := parseNameParam(r)
	if reqErr != nil {
		h.writeError(w, r, api.FetchResourcePath, reqErr)
		return
	}

	payload, err := h.fetcher.FetchURL(r.Context(), siteURL)
	if errors.Is(err, interfaces.ErrSiteEmpty) {
		h.metrics.ObserveRequest(api.FetchResourcePath, strconv.Itoa(http.StatusOK))
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		h.writeError(w, r, api.FetchResourcePath, h.classify(err, msgNoResource))
		return
	}

	for key, values := range payload.Blob.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Blob.Data)))
	h.metrics.ObserveRequest(api.FetchResourcePath, strconv.Itoa(http.StatusOK))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload.Blob.Data); err != nil {
		h.log.Debug("Failed to write resource", "err", err)
	}
}

// HandleNotFound answers requests for unknown routes.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, "unknown", http.StatusNotFound, api.ErrorResponse{
		Error: "Route " + r.URL.RequestURI() + " not found",
	})
}

func parseNameParam(r *http.Request) (*url.URL, *RequestError) {
	name := r.URL.Query().Get(api.NameParam)
	if name == "" {
		return nil, badRequest(msgNameRequired, interfaces.ErrBadInput)
	}

	siteURL, err := url.Parse(name)
	if err != nil || !siteURL.IsAbs() || siteURL.Host == "" {
		return nil, badRequest(msgInvalidURL, errors.Join(interfaces.ErrBadInput, err))
	}
	if siteURL.Scheme != "http" && siteURL.Scheme != "https" {
		return nil, badRequest(msgInvalidProtocol, interfaces.ErrBadInput)
	}
	return siteURL, nil
}

func badRequest(message string, err error) *RequestError {
	return &RequestError{
		StatusCode: http.StatusBadRequest,
		Response:   api.ErrorResponse{Error: message},
		Err:        err,
	}
}

// classify maps a pipeline error to a response. notFound is the message used
// for interfaces.ErrNotFound.
func (h *Handler) classify(err error, notFound string) *RequestError {
	switch {
	case errors.Is(err, interfaces.ErrBadInput):
		return badRequest(err.Error(), err)
	case errors.Is(err, interfaces.ErrMalformedObject):
		return &RequestError{StatusCode: http.StatusNotFound, Response: api.ErrorResponse{Error: msgNoBlobTable}, Err: err}
	case errors.Is(err, interfaces.ErrNotFound):
		return &RequestError{StatusCode: http.StatusNotFound, Response: api.ErrorResponse{Error: notFound}, Err: err}
	case errors.Is(err, interfaces.ErrUpstreamUnavailable),
		errors.Is(err, storage.ErrServerError),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &RequestError{
			StatusCode: http.StatusServiceUnavailable,
			Response:   api.ErrorResponse{Error: msgUnavailable, Details: msgUnavailableInfo},
			Err:        err,
		}
	}

	details := msgInternalInfo
	if h.cfg.Development {
		details = err.Error()
	}
	return &RequestError{
		StatusCode: http.StatusInternalServerError,
		Response:   api.ErrorResponse{Error: msgInternal, Details: details},
		Err:        err,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, route string, reqErr *RequestError) {
	name := r.URL.Query().Get(api.NameParam)
	switch {
	case reqErr.StatusCode >= http.StatusInternalServerError:
		h.log.Error("An unexpected error occurred", "err", reqErr, "url", name, "status", reqErr.StatusCode)
	case errors.Is(reqErr, interfaces.ErrMalformedObject):
		h.log.Warn("Resolved object is not a valid site", "err", reqErr, "url", name)
	default:
		h.log.Info("Request failed", "err", reqErr, "url", name, "status", reqErr.StatusCode)
	}
	h.writeJSON(w, route, reqErr.StatusCode, reqErr.Response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, route string, status int, body any) {
	h.metrics.ObserveRequest(route, strconv.Itoa(status))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func blobResult(entry *fetcher.SiteEntry) api.BlobResult {
	if entry.Err != nil {
		return api.BlobResult{Error: entry.Err.Error()}
	}

	blobID := entry.Resource.BlobID
	content := string(entry.Blob.Data)
	size := len(entry.Blob.Data)
	return api.BlobResult{BlobID: &blobID, Content: &content, Size: &size}
}
