package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/internal/infrastructure/memory"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type authFixture struct {
	router *gin.Engine
	auth   *application.AuthService
	now    time.Time
	calls  int
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	jwt := helpers.NewJWTManager("mw-secret", 24*time.Hour).WithClock(func() time.Time { return f.now })
	f.auth = application.NewAuthService(memory.NewUserRepository(), jwt, nil, helpers.NewDiscardLogger())

	a := NewAuthenticator(f.auth, helpers.NewDiscardLogger())
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/private", a.Protect(func(c *gin.Context, u *entity.User) {
		f.calls++
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "ctx": c.GetString(CtxUserIDKey)})
	}))
	f.router = r
	return f
}

func (f *authFixture) get(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestProtect_Rejections(t *testing.T) {
	f := newAuthFixture(t)

	w := f.get("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgTokenMissing, message(t, w))

	w = f.get("Bearer ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgTokenMissing, message(t, w))

	w = f.get("Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgTokenInvalid, message(t, w))

	assert.Zero(t, f.calls)
}

func TestProtect_AcceptsValidToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	id, err := f.auth.Signup(ctx, application.SignupInput{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	res, err := f.auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	for _, h := range []string{"Bearer " + res.Token, "bearer " + res.Token, "BEARER  " + res.Token} {
		w := f.get(h)
		require.Equal(t, http.StatusOK, w.Code, h)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, id, body["id"])
		assert.Equal(t, id, body["ctx"])
	}

	// The scheme is optional.
	w := f.get(res.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, f.calls)

	f.now = f.now.Add(24 * time.Hour)
	w = f.get("Bearer " + res.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, application.MsgTokenExpired, message(t, w))
	assert.Equal(t, 4, f.calls)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	const given = "0f8fad5b-d9cb-469f-a165-70867728950e"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name  string
		trust bool
		xff   string
		cf    string
		want  string
	}{
		{"untrusted ignores headers", false, "203.0.113.9", "198.51.100.1", "192.0.2.1"},
		{"cloudflare first", true, "203.0.113.9", "198.51.100.1", "198.51.100.1"},
		{"left-most forwarded", true, "203.0.113.9, 10.0.0.1", "", "203.0.113.9"},
		{"garbage falls back", true, "nope", "", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP(tt.trust))
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.cf != "" {
				req.Header.Set("CF-Connecting-IP", tt.cf)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestAccessLog_NeverLogsAuthorization(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(AccessLog(logger))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("Authorization", "Bearer super-secret-token")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/items/:id", line["path"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, "warning", line["level"])
	assert.NotContains(t, buf.String(), "super-secret-token")
}
