package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/defile/defile/internal/metrics"
	"github.com/defile/defile/internal/service"
	"github.com/defile/defile/internal/storage"
)

// PublicHandler serves the anonymous surface: the landing page and one-time
// download links.
type PublicHandler struct {
	shares  *service.ShareService
	store   *storage.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(shares *service.ShareService, store *storage.Store, recorder metrics.Recorder, logger *slog.Logger) *PublicHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PublicHandler{shares: shares, store: store, metrics: recorder, logger: logger}
}

// Landing handles GET /. It reveals nothing about stored files or shares.
func (h *PublicHandler) Landing(w http.ResponseWriter, r *http.Request) {
	render(w, h.logger, http.StatusOK, indexTpl, nil)
}

// Download handles GET /download/{uid}. A valid share streams the file as an
// attachment and is consumed once the last byte has been written; a torn
// transfer leaves the share intact so the recipient can retry.
func (h *PublicHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "invalid share token", http.StatusBadRequest)
		return
	}

	start := time.Now()

	share, consume, err := h.shares.ResolveForDownload(r.Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			h.metrics.IncDownloadMissed()
			NotFound(w, r)
			return
		}
		h.logger.Error("share resolution failed",
			slog.String("request_id", requestID(r)),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	f, size, err := h.store.Open(share.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidFilename) {
			// The share outlived its file. Don't consume; the admin can still
			// see and revoke it.
			h.logger.Warn("share references missing file",
				slog.String("request_id", requestID(r)),
				slog.String("filename", share.Filename),
			)
			h.metrics.IncDownloadMissed()
			NotFound(w, r)
			return
		}
		h.logger.Error("open shared file failed",
			slog.String("request_id", requestID(r)),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": share.Filename}))
	w.Header().Set("Cache-Control", "private, no-store")

	written, err := io.Copy(w, f)
	if err != nil || written != size {
		// Transfer torn mid-stream; the share stays valid.
		h.logger.Warn("download aborted mid-transfer",
			slog.String("request_id", requestID(r)),
			slog.String("filename", share.Filename),
			slog.Int64("written", written),
			slog.Int64("size", size),
		)
		return
	}

	// The client may disconnect right after the last byte; consumption must
	// still go through.
	if err := consume(context.WithoutCancel(r.Context())); err != nil {
		h.logger.Error("share consumption failed",
			slog.String("request_id", requestID(r)),
			slog.String("error", err.Error()),
		)
		return
	}

	h.metrics.IncDownloadServed()
	h.metrics.ObserveDownloadDuration(time.Since(start))

	h.logger.Info("share consumed",
		slog.String("request_id", requestID(r)),
		slog.String("filename", share.Filename),
		slog.Int64("size", size),
	)
}
