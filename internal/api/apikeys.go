package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListAPIKeys lists API keys, optionally filtered to one space. Listings
// only ever contain the key prefix, never the full key.
func (c *Client) ListAPIKeys(ctx context.Context, spaceID *int) (*APIKeyList, error) {
	path := "/api-keys"
	if spaceID != nil {
		path = fmt.Sprintf("/api-keys?space_id=%d", *spaceID)
	}
	var result APIKeyList
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAPIKey mints a key for a space. The returned plaintext key is
// observable exactly once; it cannot be fetched again.
func (c *Client) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*CreatedAPIKey, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("key name is required")
	}
	if req.SpaceID == 0 {
		return nil, fmt.Errorf("space id is required")
	}
	var result CreatedAPIKey
	if err := c.do(ctx, http.MethodPost, "/api-keys", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RevokeAPIKey deactivates a key without deleting it.
func (c *Client) RevokeAPIKey(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api-keys/%d/revoke", id), nil, nil)
}

// DeleteAPIKey removes a key permanently.
func (c *Client) DeleteAPIKey(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api-keys/%d", id), nil, nil)
}
