package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/db"
	"github.com/Jeomhps/formation-admin/internal/images"
	"github.com/Jeomhps/formation-admin/internal/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

type harness struct {
	t      *testing.T
	r      *gin.Engine
	cookie *http.Cookie
}

func newHarness(t *testing.T, opts ...func(*Deps)) *harness {
	t.Helper()
	d, err := db.Open(db.DriverSQLite, "file::memory:?_foreign_keys=on", db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	deps := Deps{
		DB:            d,
		Images:        images.NewMemory(),
		Tokens:        auth.NewTokenManager("test-secret", 7*24*time.Hour),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		PublicBaseURL: "http://api.test",
	}
	for _, o := range opts {
		o(&deps)
	}
	return &harness{t: t, r: NewRouter(deps)}
}

func (h *harness) send(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.r.ServeHTTP(rr, req)
	return rr
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	return h.send(req)
}

func (h *harness) login(email, password string) {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/api/auth/register", gin.H{"email": email, "name": "Admin", "password": password})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	rr = h.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	h.cookie = sessionCookie(rr)
	require.NotNil(h.t, h.cookie)
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (h *harness) createProfessor(name string) int64 {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/api/professors", gin.H{
		"firstName": name, "lastName": "Doe", "image": "http://api.test/api/images/x",
		"profile": "bio", "certificates": []string{"PMP"},
	})
	require.Equal(h.t, http.StatusCreated, rr.Code, rr.Body.String())
	return int64(decode(h.t, rr)["id"].(float64))
}

func formationBody(ids ...int64) gin.H {
	if ids == nil {
		ids = []int64{}
	}
	return gin.H{
		"title":        "Go fundamentals",
		"startDate":    "2025-03-01",
		"endDate":      "2025-03-05",
		"duration":     "35",
		"classSize":    12,
		"description":  "**Hands-on** <script>x()</script>",
		"images":       []string{"b.png", "a.png"},
		"professorIds": ids,
	}
}

func professorSet(t *testing.T, rr *httptest.ResponseRecorder) []int64 {
	t.Helper()
	body := decode(t, rr)
	var ids []int64
	for _, p := range body["professors"].([]any) {
		ids = append(ids, int64(p.(map[string]any)["id"].(float64)))
	}
	return ids
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")

	assert.True(t, h.cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, h.cookie.SameSite)
	assert.Equal(t, "/", h.cookie.Path)
	assert.Equal(t, 7*24*3600, h.cookie.MaxAge)
	assert.False(t, h.cookie.Secure)

	rr := h.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.Equal(t, "ada@example.org", me["email"])
	assert.NotZero(t, me["userId"])

	rr = h.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, rr.Body.String())
	cleared := sessionCookie(rr)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	h.cookie = nil
	rr = h.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")
	h.cookie = nil

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"wrong password", `{"email":"ada@example.org","password":"nope"}`, http.StatusUnauthorized, "Invalid password"},
		{"unknown email", `{"email":"bob@example.org","password":"correct-horse"}`, http.StatusNotFound, "User not found"},
		{"missing password", `{"email":"ada@example.org"}`, http.StatusBadRequest, "Email and password are required"},
		{"bad json", `{"email" oops}`, http.StatusBadRequest, "Email and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.error, decode(t, rr)["error"])
			assert.Nil(t, sessionCookie(rr))
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")

	rr := h.do(http.MethodPost, "/api/auth/register", gin.H{"email": "ada@example.org", "password": "another-pass"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = h.do(http.MethodPost, "/api/auth/register", gin.H{"password": "another-pass"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr)["fields"].(map[string]any), "email")

	rr = h.do(http.MethodPost, "/api/auth/register", gin.H{"email": "new@example.org", "password": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr)["fields"].(map[string]any), "password")

	rr = h.do(http.MethodPost, "/api/auth/register", gin.H{"email": "new@example.org", "name": "New", "password": "another-pass"})
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode(t, rr)["user"].(map[string]any)
	assert.Equal(t, "new@example.org", user["email"])
	assert.NotContains(t, user, "passwordHash")
}

func TestRegisterAcceptsAnyNonEmptyCredentials(t *testing.T) {
	h := newHarness(t)

	// no format or length rules beyond presence
	h.login("admin", "x")
	rr := h.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "admin", decode(t, rr)["email"])
}

func TestWritesRequireSession(t *testing.T) {
	h := newHarness(t)

	for _, rt := range []struct{ method, path string }{
		{http.MethodPost, "/api/formations"},
		{http.MethodPut, "/api/formations?id=1"},
		{http.MethodDelete, "/api/formations/1"},
		{http.MethodPost, "/api/professors"},
		{http.MethodDelete, "/api/professors"},
		{http.MethodPut, "/api/professors/1"},
		{http.MethodPost, "/api/upload-images"},
		{http.MethodDelete, "/api/images/abc"},
	} {
		rr := h.do(rt.method, rt.path, "{}")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, rt.method+" "+rt.path)
	}

	rr := h.do(http.MethodGet, "/api/formations", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestFormationProfessorSets(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")
	p1 := h.createProfessor("p1")
	p2 := h.createProfessor("p2")
	p3 := h.createProfessor("p3")

	rr := h.do(http.MethodPost, "/api/formations", formationBody(p1, p2))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.ElementsMatch(t, []int64{p1, p2}, professorSet(t, rr))
	created := decode(t, rr)
	fid := int64(created["id"].(float64))
	assert.Equal(t, float64(35), created["duration"])
	assert.Equal(t, float64(12), created["classSize"])
	assert.Equal(t, []any{"b.png", "a.png"}, created["images"])
	assert.Equal(t, "2025-03-01T00:00:00Z", created["startDate"])
	assert.Contains(t, created["descriptionHtml"], "<strong>Hands-on</strong>")
	assert.NotContains(t, created["descriptionHtml"], "<script")

	// query-id variant
	rr = h.do(http.MethodPut, fmt.Sprintf("/api/formations?id=%d", fid), formationBody(p2, p3))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.ElementsMatch(t, []int64{p2, p3}, professorSet(t, rr))

	// path variant, fresh read
	rr = h.do(http.MethodPut, fmt.Sprintf("/api/formations/%d", fid), formationBody(p3))
	require.Equal(t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodGet, fmt.Sprintf("/api/formations/%d", fid), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{p3}, professorSet(t, rr))

	rr = h.do(http.MethodGet, fmt.Sprintf("/api/formations?id=%d", fid), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Go fundamentals", decode(t, rr)["title"])

	rr = h.do(http.MethodPut, "/api/formations/9999", formationBody(p1))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Formation not found", decode(t, rr)["error"])
}

func TestDeleteReferencedProfessor(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")
	p1 := h.createProfessor("p1")
	p2 := h.createProfessor("p2")

	rr := h.do(http.MethodPost, "/api/formations", formationBody(p1, p2))
	require.Equal(t, http.StatusCreated, rr.Code)
	fid := int64(decode(t, rr)["id"].(float64))

	rr = h.do(http.MethodDelete, fmt.Sprintf("/api/professors/%d", p1), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodGet, fmt.Sprintf("/api/formations/%d", fid), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{p2}, professorSet(t, rr))

	rr = h.do(http.MethodDelete, fmt.Sprintf("/api/professors/%d", p1), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(http.MethodDelete, "/api/professors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodGet, "/api/professors", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = h.do(http.MethodDelete, fmt.Sprintf("/api/formations?id=%d", fid), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodDelete, fmt.Sprintf("/api/formations/%d", fid), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNonNumericIDs(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")

	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/formations/abc"},
		{http.MethodGet, "/api/formations?id=abc"},
		{http.MethodPut, "/api/formations/abc"},
		{http.MethodPut, "/api/formations?id=abc"},
		{http.MethodDelete, "/api/formations/abc"},
		{http.MethodDelete, "/api/formations?id=1.5"},
		{http.MethodGet, "/api/professors/abc"},
		{http.MethodPut, "/api/professors/abc"},
		{http.MethodDelete, "/api/professors/-1"},
	} {
		rr := h.do(rt.method, rt.path, formationBody())
		assert.Equal(t, http.StatusBadRequest, rr.Code, rt.method+" "+rt.path)
	}

	rr := h.do(http.MethodPut, "/api/formations", formationBody())
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing formation ID", decode(t, rr)["error"])
}

func TestFormationValidation(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")
	p1 := h.createProfessor("p1")

	mutate := func(f func(gin.H)) gin.H {
		b := formationBody(p1)
		f(b)
		return b
	}
	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing title", mutate(func(b gin.H) { delete(b, "title") }), "title"},
		{"missing professorIds", mutate(func(b gin.H) { delete(b, "professorIds") }), "professorIds"},
		{"missing startDate", mutate(func(b gin.H) { delete(b, "startDate") }), "startDate"},
		{"bad classSize", mutate(func(b gin.H) { b["classSize"] = "twelve" }), "body"},
		{"bad date", mutate(func(b gin.H) { b["endDate"] = "soon" }), "body"},
		{"end before start", mutate(func(b gin.H) { b["endDate"] = "2025-01-01" }), "endDate"},
		{"unknown professor", mutate(func(b gin.H) { b["professorIds"] = []int64{p1, 9999} }), "professorIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := h.do(http.MethodPost, "/api/formations", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			fields, _ := decode(t, rr)["fields"].(map[string]any)
			assert.Contains(t, fields, tt.field)
		})
	}

	rr := h.do(http.MethodPost, "/api/formations", mutate(func(b gin.H) {
		b["classSize"] = ""
		delete(b, "images")
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Nil(t, body["classSize"])
	assert.Equal(t, []any{}, body["images"])
}

func TestProfessorValidation(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")

	base := func() gin.H {
		return gin.H{"firstName": "Ada", "lastName": "Lovelace", "image": "a.png", "profile": "math"}
	}

	rr := h.do(http.MethodPost, "/api/professors", base())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	b := base()
	b["certificates"] = "PMP"
	rr = h.do(http.MethodPost, "/api/professors", b)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	b = base()
	b["certificates"] = []string{}
	delete(b, "profile")
	rr = h.do(http.MethodPost, "/api/professors", b)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	b = base()
	b["certificates"] = []string{"PMP", "CKA"}
	rr = h.do(http.MethodPost, "/api/professors", b)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode(t, rr)
	assert.Equal(t, []any{"PMP", "CKA"}, created["certificates"])
	assert.Equal(t, []any{}, created["formations"])
	pid := int64(created["id"].(float64))

	// update without certificates clears them
	rr = h.do(http.MethodPut, fmt.Sprintf("/api/professors/%d", pid), base())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{}, decode(t, rr)["certificates"])

	rr = h.do(http.MethodPut, "/api/professors/9999", base())
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Professor not found", decode(t, rr)["error"])
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func (h *harness) upload(files map[string][]byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(h.t, err)
		_, _ = fw.Write(data)
	}
	require.NoError(h.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload-images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.send(req)
}

func TestImages(t *testing.T) {
	h := newHarness(t)
	h.login("ada@example.org", "correct-horse")

	rr := h.upload(map[string][]byte{"cat.png": pngHeader})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	urls := decode(t, rr)["urls"].([]any)
	require.Len(t, urls, 1)
	u := urls[0].(string)
	require.Contains(t, u, "http://api.test/api/images/")
	path := u[len("http://api.test"):]

	h.cookie = nil
	rr = h.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rr.Body.Bytes())

	h.login("bob@example.org", "correct-horse")
	rr = h.upload(map[string][]byte{"notes.txt": []byte("plain text")})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.upload(map[string][]byte{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	many := map[string][]byte{}
	for i := 0; i < 11; i++ {
		many[fmt.Sprintf("%d.png", i)] = pngHeader
	}
	rr = h.upload(many)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = h.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPageGuard(t *testing.T) {
	h := newHarness(t)

	rr := h.do(http.MethodGet, "/professors", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth/login?redirect=%2Fprofessors", rr.Header().Get("Location"))

	rr = h.do(http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	h.login("ada@example.org", "correct-horse")
	rr = h.do(http.MethodGet, "/professors", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	rr := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

type keyLimiter struct {
	mock.Mock
}

func (m *keyLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time) {
	m.Called(key)
	return true, 5, time.Now().Add(time.Minute)
}

func (m *keyLimiter) Limit() int { return 5 }

func loginFrom(h *harness, forwardedFor string) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"x@example.org","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.RemoteAddr = "10.0.0.1:40000"
	h.send(req)
}

func TestLoginRateLimitKeyIgnoresForwardedFor(t *testing.T) {
	l := new(keyLimiter)
	l.On("Allow", "10.0.0.1").Return().Times(3)
	h := newHarness(t, func(d *Deps) { d.Limiter = l })

	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		loginFrom(h, xff)
	}
	l.AssertExpectations(t)
}

func TestLoginRateLimitKeyBehindTrustedProxy(t *testing.T) {
	l := new(keyLimiter)
	l.On("Allow", "1.1.1.1").Return().Once()
	h := newHarness(t, func(d *Deps) {
		d.Limiter = l
		d.TrustedProxies = []string{"10.0.0.1"}
	})

	loginFrom(h, "1.1.1.1")
	l.AssertExpectations(t)
}
