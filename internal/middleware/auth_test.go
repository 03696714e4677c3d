package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	mw := NewAuthMiddleware("test-secret", time.Hour)
	e := echo.New()

	next := func(c echo.Context) error {
		uid, _ := c.Get("uid").(uint64)
		return c.JSON(http.StatusOK, map[string]uint64{"uid": uid})
	}

	t.Run("valid token", func(t *testing.T) {
		token, err := mw.GenerateToken(42)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, mw.RequireAuth(next)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"uid":42`)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, mw.RequireAuth(next)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthMiddleware("other-secret", time.Hour)
		token, err := other.GenerateToken(42)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, mw.RequireAuth(next)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewAuthMiddleware("test-secret", -time.Minute)
		token, err := short.GenerateToken(42)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, mw.RequireAuth(next)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
