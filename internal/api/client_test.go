package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polidex/cli/internal/session"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := &session.MemStore{}
	if token != "" {
		require.NoError(t, sess.Set(token))
	}
	return New(srv.URL+"/api", sess)
}

func TestAuthHeaderOmittedWithoutToken(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{"spaces": [], "total": 0}`))
	})

	_, err := client.ListSpaces(context.Background())
	require.NoError(t, err)
	assert.False(t, hadAuth, "no session should mean no Authorization header")
	assert.Empty(t, gotAuth)
}

func TestAuthHeaderBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, "secret-token", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"spaces": [], "total": 0}`))
	})

	_, err := client.ListSpaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{"401 is unauthenticated", http.StatusUnauthorized, "", KindUnauthenticated, "authentication required"},
		{"403 is forbidden", http.StatusForbidden, "", KindForbidden, "invalid credentials"},
		{"500 surfaces detail", http.StatusInternalServerError, `{"detail": "x"}`, KindRequestFailed, "x"},
		{"422 surfaces detail", http.StatusUnprocessableEntity, `{"detail": "name already taken"}`, KindRequestFailed, "name already taken"},
		{"non-json error body falls back", http.StatusBadGateway, "<html>bad gateway</html>", KindRequestFailed, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListSpaces(context.Background())
			require.Error(t, err)
			assert.True(t, HasKind(err, tt.wantKind), "got %v", err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"spaces": "not-an-array"`))
	})

	_, err := client.ListSpaces(context.Background())
	require.Error(t, err)
	assert.True(t, HasKind(err, KindDecode), "got %v", err)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url+"/api", &session.MemStore{})
	_, err := client.ListSpaces(context.Background())
	require.Error(t, err)
	assert.True(t, HasKind(err, KindTransport), "got %v", err)
}

func TestJSONContentType(t *testing.T) {
	var gotContentType string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"id": 1, "name": "Support KB", "created_at": "2025-01-01T00:00:00Z"}`))
	})

	_, err := client.CreateSpace(context.Background(), CreateSpaceRequest{Name: "Support KB"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
}

func TestGetRequestHasNoContentType(t *testing.T) {
	var gotContentType string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"spaces": [], "total": 0}`))
	})

	_, err := client.ListSpaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotContentType)
}

func TestUploadMultipartLayout(t *testing.T) {
	var gotPath, gotContentType, gotFile string
	var gotSpaceIDs []string
	var gotAuth string
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSpaceIDs = r.MultipartForm.Value["space_ids"]

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFile = header.Filename + ":" + string(data)

		w.Write([]byte(`{"id": 7, "filename": "doc.pdf", "chunk_count": 3, "spaces": [{"id": 1, "name": "Support KB"}]}`))
	})

	result, err := client.UploadDocument(context.Background(), "doc.pdf", strings.NewReader("%PDF-1.4"), []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "/api/documents/upload", gotPath)
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"), "got %q", gotContentType)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, []string{"1", "2"}, gotSpaceIDs)
	assert.Equal(t, "doc.pdf:%PDF-1.4", gotFile)
	assert.Equal(t, 7, result.ID)
	assert.Equal(t, 3, result.ChunkCount)
}

func TestUploadRequiresTargetSpace(t *testing.T) {
	client := New("http://localhost:1/api", &session.MemStore{})
	_, err := client.UploadDocument(context.Background(), "doc.pdf", strings.NewReader("x"), nil)
	assert.Error(t, err)
}

func TestResourcePaths(t *testing.T) {
	spaceID := 3
	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantURL    string
	}{
		{"list spaces", func(c *Client) error { _, err := c.ListSpaces(t.Context()); return err }, "GET", "/api/spaces"},
		{"get space", func(c *Client) error { _, err := c.GetSpace(t.Context(), 3); return err }, "GET", "/api/spaces/3"},
		{"delete space", func(c *Client) error { return c.DeleteSpace(t.Context(), 3) }, "DELETE", "/api/spaces/3"},
		{"list documents", func(c *Client) error { _, err := c.ListDocuments(t.Context(), nil); return err }, "GET", "/api/documents"},
		{"list documents filtered", func(c *Client) error { _, err := c.ListDocuments(t.Context(), &spaceID); return err }, "GET", "/api/documents?space_id=3"},
		{"get document", func(c *Client) error { _, err := c.GetDocument(t.Context(), 9); return err }, "GET", "/api/documents/9"},
		{"delete document", func(c *Client) error { return c.DeleteDocument(t.Context(), 9) }, "DELETE", "/api/documents/9"},
		{"link document", func(c *Client) error { return c.AddDocumentToSpace(t.Context(), 9, 3) }, "POST", "/api/documents/9/spaces/3"},
		{"unlink document", func(c *Client) error { return c.RemoveDocumentFromSpace(t.Context(), 9, 3) }, "DELETE", "/api/documents/9/spaces/3"},
		{"list keys", func(c *Client) error { _, err := c.ListAPIKeys(t.Context(), nil); return err }, "GET", "/api/api-keys"},
		{"list keys filtered", func(c *Client) error { _, err := c.ListAPIKeys(t.Context(), &spaceID); return err }, "GET", "/api/api-keys?space_id=3"},
		{"revoke key", func(c *Client) error { return c.RevokeAPIKey(t.Context(), 4) }, "POST", "/api/api-keys/4/revoke"},
		{"delete key", func(c *Client) error { return c.DeleteAPIKey(t.Context(), 4) }, "DELETE", "/api/api-keys/4"},
		{"overview", func(c *Client) error { _, err := c.Overview(t.Context()); return err }, "GET", "/api/stats/overview"},
		{"query logs", func(c *Client) error { _, err := c.QueryLogs(t.Context(), 50); return err }, "GET", "/api/stats/logs?limit=50"},
		{"usage", func(c *Client) error { _, err := c.Usage(t.Context(), 20, 40); return err }, "GET", "/api/stats/usage?limit=20&offset=40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotURL string
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotURL = r.URL.String()
				w.Write([]byte(`{}`))
			})

			require.NoError(t, tt.call(client))
			assert.Equal(t, tt.wantMethod, gotMethod)
			assert.Equal(t, tt.wantURL, gotURL)
		})
	}
}

func TestInputGuards(t *testing.T) {
	client := New("http://localhost:1/api", &session.MemStore{})
	ctx := context.Background()

	_, err := client.CreateSpace(ctx, CreateSpaceRequest{Name: "  "})
	assert.Error(t, err)

	_, err = client.CreateAPIKey(ctx, CreateAPIKeyRequest{Name: "bot1"})
	assert.Error(t, err, "missing space id")

	_, err = client.CreateAPIKey(ctx, CreateAPIKeyRequest{SpaceID: 1})
	assert.Error(t, err, "missing name")

	_, err = client.Query(ctx, ChatRequest{SpaceID: 1})
	assert.Error(t, err, "missing query text")

	_, err = client.Query(ctx, ChatRequest{Query: "refund policy?"})
	assert.Error(t, err, "missing space id")
}
