package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gamesense/app/internal/auth"
	"gamesense/app/internal/feedback"
	"gamesense/app/internal/repository/document"
	"gamesense/app/internal/service"
	"gamesense/app/internal/storage"
	"gamesense/app/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	st := store.New(nil, store.Options{FallbackPath: filepath.Join(dir, "storage.local.json")})
	require.NoError(t, st.Load(context.Background()))
	blobs, err := storage.NewLocalStorage(filepath.Join(dir, "videos"), "/media")
	require.NoError(t, err)

	users := document.NewUserRepository(st)
	sessions := document.NewSessionRepository(st)
	hasher := &auth.Hasher{Preferred: auth.SchemePBKDF2, PBKDF2Rounds: 1000, BcryptCost: 4}

	router := gin.New()
	SetupRoutes(router, RouteDeps{
		JWTSecret:        "secret",
		AuthService:      service.NewAuthService(users, hasher, "secret", time.Hour),
		SessionService:   service.NewSessionService(sessions, feedback.NewLibrary(nil), blobs, "data/videos"),
		AccountService:   service.NewAccountService(users, sessions, blobs),
		DashboardService: service.NewDashboardService(sessions),
		MaxUploadBytes:   1 << 20,
		MediaDir:         blobs.Root(),
		MediaPrefix:      "/media",
	})
	return router
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r http.Handler, token, filename string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("clip-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: email, Password: "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, email, resp.User.Email)
	return resp.Token
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "ana@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{Email: "ana@example.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid credentials or user does not exist"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ana@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "ana@example.com")

	w := upload(t, r, token, "derby.mp4", map[string]string{
		"role": "Winger", "skill": "Crossing", "rating": "8", "note": "early crosses",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.ID, 32)
	assert.Contains(t, created.Highlights, feedback.HighlightStrong)
	assert.True(t, strings.HasPrefix(created.VideoURL, "/media/data/videos/"+created.ID))

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+created.ID+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "derby_feedback.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+created.ID+"/video", token, nil)
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, created.VideoURL, location)

	w = doJSON(t, r, http.MethodGet, location, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clip-bytes", w.Body.String())

	// other players cannot see it
	other := registerAndLogin(t, r, "bob@example.com")
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "ana@example.com")

	tests := []struct {
		name   string
		file   string
		fields map[string]string
	}{
		{"bad extension", "clip.avi", map[string]string{"role": "Striker", "skill": "Finishing", "rating": "5"}},
		{"rating not a number", "clip.mp4", map[string]string{"role": "Striker", "skill": "Finishing", "rating": "high"}},
		{"rating out of range", "clip.mp4", map[string]string{"role": "Striker", "skill": "Finishing", "rating": "12"}},
		{"unknown skill", "clip.mp4", map[string]string{"role": "Striker", "skill": "Juggling", "rating": "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, r, token, tt.file, tt.fields)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestAccountAndDashboard(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "ana@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/v1/memberships", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Academy"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Goalkeeper"`)

	w = doJSON(t, r, http.MethodPut, "/api/v1/me/membership", token, MembershipRequest{Membership: "Pro"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, "/api/v1/me/membership", token, MembershipRequest{Membership: "Diamond"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Pro", string(me.Membership))

	w = upload(t, r, token, "a.mov", map[string]string{"role": "Goalkeeper", "skill": "Distribution", "rating": "3"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d service.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, 1, d.Total)
	assert.Equal(t, []service.Count{{Name: "Goalkeeper", Count: 1}}, d.ByRole)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Account deleted.","sessions_removed":1}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
