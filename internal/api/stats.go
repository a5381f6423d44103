package api

import (
	"context"
	"fmt"
	"net/http"
)

// Overview fetches the dashboard aggregate.
func (c *Client) Overview(ctx context.Context) (*Stats, error) {
	var result Stats
	if err := c.do(ctx, http.MethodGet, "/stats/overview", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QueryLogs fetches the most recent query logs.
func (c *Client) QueryLogs(ctx context.Context, limit int) (*QueryLogList, error) {
	var result QueryLogList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stats/logs?limit=%d", limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Usage fetches the usage aggregate plus one page of billed requests.
func (c *Client) Usage(ctx context.Context, limit, offset int) (*UsageData, error) {
	var result UsageData
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stats/usage?limit=%d&offset=%d", limit, offset), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
