// Package api is the typed gateway to the Polidex backend. All requests
// go through one code path that attaches the bearer token and maps every
// failure onto the Kind taxonomy in errors.go.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/polidex/cli/internal/session"
)

// Client wraps Polidex admin API interactions
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    session.Store
}

// New creates a new API client against the given base URL, e.g.
// "http://localhost:8000/api". The session store supplies the bearer token.
func New(baseURL string, sess session.Store) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000/api"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // chat queries can run long
		},
	}
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// do issues one JSON request and decodes the response into out (skipped
// when out is nil). No retries at this layer.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

// upload issues a multipart request: one file part plus a repeated
// space_ids field per target space. Content type comes from the multipart
// writer, not the JSON path.
func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader, spaceIDs []int, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	for _, id := range spaceIDs {
		if err := writer.WriteField("space_ids", fmt.Sprintf("%d", id)); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	return c.send(req, out)
}

// authorize attaches the bearer token when a session exists. With no
// token the request goes out unauthenticated and the backend decides.
func (c *Client) authorize(req *http.Request) {
	if token, ok := c.session.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send executes the request and classifies the outcome.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return newUnauthenticated()
	case resp.StatusCode == http.StatusForbidden:
		return newForbidden()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var errBody errorBody
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &errBody)
		return newRequestFailed(resp.StatusCode, errBody.Detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newDecode(err)
	}
	return nil
}
