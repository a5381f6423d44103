package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListSpaces lists all spaces.
func (c *Client) ListSpaces(ctx context.Context) (*SpaceList, error) {
	var result SpaceList
	if err := c.do(ctx, http.MethodGet, "/spaces", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSpace fetches one space with its document and key counts.
func (c *Client) GetSpace(ctx context.Context, id int) (*SpaceDetail, error) {
	var result SpaceDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/spaces/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSpace creates a space. Name must be non-empty.
func (c *Client) CreateSpace(ctx context.Context, req CreateSpaceRequest) (*Space, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("space name is required")
	}
	var result Space
	if err := c.do(ctx, http.MethodPost, "/spaces", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSpace deletes a space by id.
func (c *Client) DeleteSpace(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/spaces/%d", id), nil, nil)
}
