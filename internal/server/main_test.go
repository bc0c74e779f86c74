package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"snapgram/internal/auth"
	"snapgram/internal/bootstrap"
	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/media"
	"snapgram/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	app    *fiber.App
	redis  *miniredis.Miniredis
	media  string
}

func testConfig(mediaDir string) *config.Config {
	return &config.Config{
		Env:            "test",
		Port:           "0",
		DBDriver:       config.DriverSQLite,
		JWTSecret:      testJWTSecret,
		BcryptCost:     bcrypt.MinCost,
		BodyLimitMB:    4,
		MediaDriver:    config.MediaLocal,
		MediaLocalDir:  mediaDir,
		MediaPublicURL: "http://localhost/media",
	}
}

// setupTestServer wires the full stack against in-memory SQLite, a temporary
// media directory and miniredis.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mediaDir := t.TempDir()
	cfg := testConfig(mediaDir)
	local, err := media.NewLocalStore(mediaDir, cfg.MediaPublicURL)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rt := &bootstrap.Runtime{
		DB:       db,
		Redis:    rdb,
		Users:    repository.NewUserRepository(db),
		Posts:    repository.NewPostRepository(db),
		Uploader: media.Instrument(local),
	}
	t.Cleanup(func() { _ = rt.Close(t.Context()) })

	srv := NewServerWithRuntime(cfg, rt)
	return &testEnv{server: srv, app: srv.App(), redis: mr, media: mediaDir}
}

type apiResponse struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (r apiResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) apiResponse {
	t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{status: resp.StatusCode, body: body, cookies: resp.Cookies()}
}

func (e *testEnv) json(t *testing.T, method, path string, payload any, token string) apiResponse {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.do(t, req, token)
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func (e *testEnv) multipart(t *testing.T, method, path string, fields map[string][]string, file *formFile, token string) apiResponse {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(t, req, token)
}

type signedUp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID             string `json:"id"`
		Email          string `json:"email"`
		Name           string `json:"name"`
		Username       string `json:"username"`
		ProfilePicture string `json:"profilePicture"`
	} `json:"user"`
}

func (e *testEnv) signup(t *testing.T, email, name string) signedUp {
	t.Helper()
	resp := e.json(t, http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": "password123", "name": name,
	}, "")
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var out signedUp
	resp.decode(t, &out)
	return out
}
