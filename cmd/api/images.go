package main

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"turfbook/internal/apperr"
	"turfbook/internal/media"

	"github.com/google/uuid"
)

const (
	maxUploadBytes      = 15 << 20 // 15MB
	maxImagesPerRequest = 7
	maxImageWidth       = 1600

	venueImagesFolder = "venues"
	turfImagesFolder  = "turfs"
)

var errInvalidImage = apperr.Validation("invalid_image", "the uploaded file is not a supported image")

// readImages parses a multipart form and returns the files sent as "photo".
func readImages(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	files := r.MultipartForm.File["photo"]
	switch {
	case len(files) == 0:
		return nil, fmt.Errorf("at least one photo is required")
	case len(files) > maxImagesPerRequest:
		return nil, fmt.Errorf("at most %d photos per request", maxImagesPerRequest)
	}
	return files, nil
}

// uploadImages uploads files in order. On failure the ones already uploaded
// are removed again.
func (app *application) uploadImages(ctx context.Context, files []*multipart.FileHeader, folder string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := app.uploadImage(ctx, fh, folder)
		if err != nil {
			app.deleteImages(urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (app *application) uploadImage(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	buf, err := media.Normalize(f, maxImageWidth)
	if err != nil {
		return "", errInvalidImage.With(err)
	}

	return app.media.Upload(ctx, buf, folder, uuid.NewString())
}

// deleteImages removes urls from the media host in the background. Failures
// are only logged.
func (app *application) deleteImages(urls []string) {
	if len(urls) == 0 {
		return
	}
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		for _, u := range urls {
			if err := app.media.Delete(ctx, u); err != nil {
				app.logger.Warnw("failed to delete image", "url", u, "error", err)
			}
		}
	})
}
