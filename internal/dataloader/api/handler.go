// Package api exposes the dataloader over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/archive"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/models"
	"github.com/dmitrijs2005/aitooling/internal/httpx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	msgNoFile         = "No file uploaded"
	msgNotCSV         = "Only CSV files are supported"
	msgBadContentType = "Invalid file content type. Expected CSV file."
	msgInvalidFormat  = "Invalid CSV format. Please ensure the file has 'Name' and 'Value' columns."
	msgUploadFailed   = "An error occurred while processing the file"
	msgListFailed     = "An error occurred while retrieving data"

	// multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20
)

var allowedContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"application/csv":          {},
	"application/vnd.ms-excel": {},
}

// DataService is implemented by services.IngestionService.
type DataService interface {
	Ingest(ctx context.Context, r io.Reader) (int, error)
	GetAll(ctx context.Context) ([]*models.DataRecord, error)
	GetByID(ctx context.Context, id int64) (*models.DataRecord, error)
}

type uploadResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Handler struct {
	data          DataService
	archiver      archive.Archiver
	maxUploadSize int64
	logger        logging.Logger

	uploads  *prometheus.CounterVec
	ingested prometheus.Counter
}

func NewHandler(data DataService, archiver archive.Archiver, maxUploadSize int64, reg prometheus.Registerer, logger logging.Logger) *Handler {
	f := promauto.With(reg)
	return &Handler{
		data:          data,
		archiver:      archiver,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("module", "data_api"),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataloader",
			Name:      "uploads_total",
			Help:      "CSV uploads by outcome.",
		}, []string{"outcome"}),
		ingested: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dataloader",
			Name:      "records_ingested_total",
			Help:      "Records persisted from CSV uploads.",
		}),
	}
}

func (h *Handler) reject(w http.ResponseWriter, outcome, msg string) {
	h.uploads.WithLabelValues(outcome).Inc()
	httpx.WriteError(w, http.StatusBadRequest, msg)
}

// Upload accepts a multipart form with a "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tooLarge := fmt.Sprintf("File size exceeds maximum limit of %d MB", h.maxUploadSize>>20)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.logger.Warn(ctx, "upload exceeds size limit", "limit", h.maxUploadSize)
			h.reject(w, "too_large", tooLarge)
			return
		}
		h.logger.Warn(ctx, "upload attempt with no file", "error", err)
		h.reject(w, "no_file", msgNoFile)
		return
	}
	defer file.Close()
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	if header.Size == 0 {
		h.logger.Warn(ctx, "upload attempt with empty file", "file", header.Filename)
		h.reject(w, "no_file", msgNoFile)
		return
	}

	if header.Size > h.maxUploadSize {
		h.logger.Warn(ctx, "upload exceeds size limit", "size", header.Size, "limit", h.maxUploadSize)
		h.reject(w, "too_large", tooLarge)
		return
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		h.logger.Warn(ctx, "upload with invalid file type", "extension", ext)
		h.reject(w, "not_csv", msgNotCSV)
		return
	}

	if ct := header.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if _, ok := allowedContentTypes[strings.ToLower(mt)]; err != nil || !ok {
			h.logger.Warn(ctx, "upload with invalid content type", "content_type", ct)
			h.reject(w, "bad_content_type", msgBadContentType)
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error(ctx, "error reading upload", "file", header.Filename, "error", err)
		h.uploads.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	count, err := h.data.Ingest(ctx, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, common.ErrInvalidFormat) {
			h.logger.Warn(ctx, "CSV parsing error", "file", header.Filename, "error", err)
			h.reject(w, "invalid_format", msgInvalidFormat)
			return
		}
		h.logger.Error(ctx, "error processing file", "file", header.Filename, "error", err)
		h.uploads.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	if key, err := h.archiver.Archive(ctx, header.Filename, data); err != nil {
		h.logger.Warn(ctx, "upload archive failed", "file", header.Filename, "error", err)
	} else if key != "" {
		h.logger.Debug(ctx, "upload archived", "file", header.Filename, "key", key)
	}

	h.uploads.WithLabelValues("ok").Inc()
	h.ingested.Add(float64(count))
	h.logger.Info(ctx, "records loaded", "count", count, "file", header.Filename)

	httpx.WriteJSON(w, http.StatusOK, uploadResponse{
		Message: fmt.Sprintf("Loaded %d records", count),
		Count:   count,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.data.GetAll(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "error retrieving data records", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgListFailed)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}

// Get responds with the record's name only.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid id %q", raw))
		return
	}

	rec, err := h.data.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			httpx.WriteError(w, http.StatusNotFound, fmt.Sprintf("Data record with ID %d not found", id))
			return
		}
		h.logger.Error(r.Context(), "error retrieving data record", "id", id, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, msgListFailed)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, rec.Name)
}
