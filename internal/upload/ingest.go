// Package upload streams multipart file uploads into private storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/defile/defile/internal/storage"
)

var (
	// ErrNotMultipart indicates the request body is not multipart/form-data.
	ErrNotMultipart = errors.New("request is not multipart/form-data")
	// ErrNoFile indicates no file part was present in the body.
	ErrNoFile = errors.New("no file in upload")
	// ErrTooLarge indicates the upload exceeded the configured size limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// Result describes one ingested file.
type Result struct {
	Filename string
	Size     int64
}

// Ingester writes incoming multipart bodies to the store without buffering
// whole payloads in memory.
type Ingester struct {
	store    *storage.Store
	maxBytes int64
}

// New creates an Ingester over the store. maxBytes bounds the total request
// body; zero means unbounded.
func New(store *storage.Store, maxBytes int64) *Ingester {
	return &Ingester{store: store, maxBytes: maxBytes}
}

// Ingest consumes the request body part by part and returns the files that
// were durably stored.
//
// Ordering is strict per part: the multipart reader yields a part only after
// its headers are fully parsed, the destination handle is opened before the
// first body byte is copied, and the handle is committed (flushed and renamed
// into place) before the next part is touched. An error on any part aborts
// that part's temp file; earlier committed parts stay.
func (ing *Ingester) Ingest(ctx context.Context, r *http.Request) ([]Result, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return nil, ErrNotMultipart
	}

	body := r.Body
	if ing.maxBytes > 0 {
		body = http.MaxBytesReader(nil, body, ing.maxBytes)
	}

	reader := multipart.NewReader(body, params["boundary"])

	var results []Result
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return results, wrapBodyError(err)
		}

		// Non-file fields (no filename in Content-Disposition) are drained
		// and skipped; the upload form carries only file parts.
		if part.FileName() == "" {
			io.Copy(io.Discard, part)
			part.Close()
			continue
		}

		result, err := ing.ingestPart(part)
		part.Close()
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, ErrNoFile
	}
	return results, nil
}

// ingestPart streams a single file part to durable storage.
func (ing *Ingester) ingestPart(part *multipart.Part) (Result, error) {
	name, err := storage.SanitizeFilename(part.FileName())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", err, part.FileName())
	}

	w, err := ing.store.Create(name)
	if err != nil {
		return Result{}, err
	}

	written, err := io.Copy(w, part)
	if err != nil {
		w.Abort()
		return Result{}, wrapBodyError(err)
	}

	if err := w.Commit(); err != nil {
		return Result{}, err
	}

	return Result{Filename: name, Size: written}, nil
}

// wrapBodyError maps a body-read failure to the taxonomy: an overrun of
// http.MaxBytesReader is a validation failure, anything else is a transfer
// error to surface as-is.
func wrapBodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrTooLarge
	}
	return fmt.Errorf("read upload body: %w", err)
}
