package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Query runs an ad-hoc chat query against one space.
func (c *Client) Query(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if req.SpaceID == 0 {
		return nil, fmt.Errorf("space id is required")
	}
	var result ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/query", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
