// Package controller holds the per-page interaction state, kept free of
// any terminal widget so it can be driven directly in tests.
package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/polidex/cli/internal/api"
	"github.com/polidex/cli/internal/cache"
)

// Invalidator is the slice of the cache mutations need.
type Invalidator interface {
	Invalidate(resources ...string)
}

// DocumentUploader is the slice of the API client uploads need.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, filename string, file io.Reader, spaceIDs []int) (*api.UploadResult, error)
}

// UploadItem is one queued file.
type UploadItem struct {
	ID       string
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// NewFileItem queues a file from disk.
func NewFileItem(path string) (UploadItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadItem{}, fmt.Errorf("failed to stat file: %w", err)
	}
	return UploadItem{
		ID:       uuid.NewString(),
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// UploadOutcome is the independent result of one file in a batch.
type UploadOutcome struct {
	Item   UploadItem
	Result *api.UploadResult
	Err    error
}

// Uploader runs upload batches against a set of target spaces.
type Uploader struct {
	client DocumentUploader
	cache  Invalidator
}

// NewUploader creates an uploader.
func NewUploader(client DocumentUploader, c Invalidator) *Uploader {
	return &Uploader{client: client, cache: c}
}

// Run uploads the batch strictly one file at a time: file N+1 is not
// started until file N has resolved. A failed file does not cancel the
// rest; every file gets its own outcome. After the batch finishes,
// success or partial failure, the document and space caches are
// invalidated. onProgress, if non-nil, runs after each file.
func (u *Uploader) Run(ctx context.Context, items []UploadItem, spaceIDs []int, onProgress func(UploadOutcome)) ([]UploadOutcome, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}
	if len(spaceIDs) == 0 {
		return nil, fmt.Errorf("at least one target space is required")
	}

	outcomes := make([]UploadOutcome, 0, len(items))
	for _, item := range items {
		outcome := UploadOutcome{Item: item}
		outcome.Result, outcome.Err = u.uploadOne(ctx, item, spaceIDs)
		outcomes = append(outcomes, outcome)
		if onProgress != nil {
			onProgress(outcome)
		}
	}

	u.cache.Invalidate(cache.ResourceDocuments, cache.ResourceSpaces)
	return outcomes, nil
}

func (u *Uploader) uploadOne(ctx context.Context, item UploadItem, spaceIDs []int) (*api.UploadResult, error) {
	file, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", item.Filename, err)
	}
	defer file.Close()

	return u.client.UploadDocument(ctx, item.Filename, file, spaceIDs)
}
