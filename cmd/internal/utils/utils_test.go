package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	req := struct {
		Email string
		Tags  []string
		Count int
	}{Email: "  a@b.com ", Tags: []string{" x", "y "}, Count: 3}

	Sanitize(&req)

	assert.Equal(t, "a@b.com", req.Email)
	assert.Equal(t, []string{"x", "y"}, req.Tags)
	assert.Equal(t, 3, req.Count)
	assert.Panics(t, func() { Sanitize(req) })
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2024-01-08T13:00:00Z", FormatEpoch(time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC).UnixMilli()))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	raw, err := IssueSessionToken(secret, "sid-1", "sub-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ParseSessionToken(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.Sid)
	assert.Equal(t, "sub-1", claims.Subject)

	_, err = ParseSessionToken([]byte("other-secret"), raw)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	raw, err := IssueSessionToken(secret, "sid-1", "sub-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseSessionToken(secret, raw)
	assert.Error(t, err)
}

func TestSessionTokenCtx(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	token, err := SessionTokenCtx(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	token, err = SessionTokenCtx(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = SessionTokenCtx(e.NewContext(req, httptest.NewRecorder()))
	assert.ErrorIs(t, err, ErrNoToken)
}
