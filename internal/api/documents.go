package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ListDocuments lists documents, optionally filtered to one space.
func (c *Client) ListDocuments(ctx context.Context, spaceID *int) (*DocumentList, error) {
	path := "/documents"
	if spaceID != nil {
		path = fmt.Sprintf("/documents?space_id=%d", *spaceID)
	}
	var result DocumentList
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocument fetches one document by id.
func (c *Client) GetDocument(ctx context.Context, id int) (*Document, error) {
	var result Document
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/documents/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadDocument uploads one file into the given spaces. At least one
// target space is required; the backend parses and chunks the file.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader, spaceIDs []int) (*UploadResult, error) {
	if len(spaceIDs) == 0 {
		return nil, fmt.Errorf("at least one target space is required")
	}
	var result UploadResult
	if err := c.upload(ctx, "/documents/upload", filename, file, spaceIDs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDocument deletes a document by id.
func (c *Client) DeleteDocument(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d", id), nil, nil)
}

// AddDocumentToSpace links a document to a space.
func (c *Client) AddDocumentToSpace(ctx context.Context, docID, spaceID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/documents/%d/spaces/%d", docID, spaceID), nil, nil)
}

// RemoveDocumentFromSpace unlinks a document from a space.
func (c *Client) RemoveDocumentFromSpace(ctx context.Context, docID, spaceID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d/spaces/%d", docID, spaceID), nil, nil)
}
