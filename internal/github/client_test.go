package github

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentsAPI emulates the subset of the contents API the client uses.
type fakeContentsAPI struct {
	mu    sync.Mutex
	files map[string][]byte
	puts  int

	// inlineLimit, when set, withholds inline content for larger files
	inlineLimit int
	rawGets     int
}

func (f *fakeContentsAPI) sha(path string) string {
	sum := sha1.Sum(f.files[path])
	return hex.EncodeToString(sum[:])
}

func (f *fakeContentsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/repos/owner/repo/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)

	switch r.Method {
	case http.MethodGet:
		content, ok := f.files[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Accept") == rawMediaType {
			f.rawGets++
			w.Write(content)
			return
		}
		if f.inlineLimit > 0 && len(content) > f.inlineLimit {
			json.NewEncoder(w).Encode(map[string]string{
				"content":  "",
				"encoding": "none",
				"sha":      f.sha(path),
			})
			return
		}
		enc := base64.StdEncoding.EncodeToString(content)
		// wrap like the real API does
		var wrapped strings.Builder
		for i := 0; i < len(enc); i += 60 {
			end := min(i+60, len(enc))
			wrapped.WriteString(enc[i:end])
			wrapped.WriteString("\n")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"content":  wrapped.String(),
			"encoding": "base64",
			"sha":      f.sha(path),
		})
	case http.MethodPut:
		f.puts++
		var body putRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, exists := f.files[path]
		if exists && body.SHA == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		if exists && body.SHA != f.sha(path) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		decoded, _ := base64.StdEncoding.DecodeString(body.Content)
		f.files[path] = decoded
		status := http.StatusOK
		if !exists {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": f.sha(path), "path": path},
		})
	case http.MethodDelete:
		delete(f.files, path)
		w.WriteHeader(http.StatusOK)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeContentsAPI) {
	t.Helper()
	api := &fakeContentsAPI{files: map[string][]byte{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{Token: "tok", Repo: "owner/repo", Branch: "main", APIURL: srv.URL})
	require.NoError(t, err)
	return c, api
}

func TestClient_GetMissing(t *testing.T) {
	c, _ := newTestClient(t)
	_, _, err := c.GetFile(context.Background(), "data/storage.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClient_PutThenGet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	payload := []byte(strings.Repeat(`{"users":{}}`, 20))

	sha, err := c.PutFile(ctx, "data/storage.json", payload, "init", "")
	require.NoError(t, err)
	require.NotEmpty(t, sha)

	got, gotSHA, err := c.GetFile(ctx, "data/storage.json")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, sha, gotSHA)
}

func TestClient_GetLargeFileUsesRawMediaType(t *testing.T) {
	c, api := newTestClient(t)
	api.inlineLimit = 64
	ctx := context.Background()
	payload := []byte(strings.Repeat(`{"sessions":[]}`, 50))

	sha, err := c.PutFile(ctx, "data/storage.json", payload, "init", "")
	require.NoError(t, err)

	got, gotSHA, err := c.GetFile(ctx, "data/storage.json")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, sha, gotSHA)
	assert.Equal(t, 1, api.rawGets)
}

func TestClient_PutConflicts(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	sha, err := c.PutFile(ctx, "doc.json", []byte("v1"), "init", "")
	require.NoError(t, err)

	_, err = c.PutFile(ctx, "doc.json", []byte("v2"), "no sha", "")
	require.ErrorIs(t, err, ErrConflict)

	_, err = c.PutFile(ctx, "doc.json", []byte("v2"), "stale sha", "deadbeef")
	require.ErrorIs(t, err, ErrConflict)

	_, err = c.PutFile(ctx, "doc.json", []byte("v2"), "update", sha)
	require.NoError(t, err)
	assert.Equal(t, 4, api.puts)
}

func TestClient_DeleteMissingIsNoop(t *testing.T) {
	c, _ := newTestClient(t)
	require.NoError(t, c.DeleteFile(context.Background(), "data/videos/x.mp4", "delete"))
}

func TestClient_RawURL(t *testing.T) {
	c, err := NewClient(Options{Repo: "owner/repo", Branch: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/owner/repo/dev/data/videos/a%20b.mp4", c.RawURL("data/videos/a b.mp4"))
}

func TestNewClient_RejectsBadRepo(t *testing.T) {
	_, err := NewClient(Options{Repo: "norepo"})
	require.Error(t, err)
}
