package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

func TestSubjectFromHeader(t *testing.T) {
	withSub := signed(t, jwt.MapClaims{"sub": "user-123", "email": "a@b.c"})
	noSub := signed(t, jwt.MapClaims{"email": "a@b.c"})
	blankSub := signed(t, jwt.MapClaims{"sub": "  "})
	numericSub := signed(t, jwt.MapClaims{"sub": 42})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer " + withSub, "user-123"},
		{"lowercase scheme", "bearer " + withSub, "user-123"},
		{"expired still decodes", "Bearer " + signed(t, jwt.MapClaims{"sub": "old", "exp": 1}), "old"},
		{"missing header", "", Anonymous},
		{"wrong scheme", "Basic " + withSub, Anonymous},
		{"no token", "Bearer ", Anonymous},
		{"garbage token", "Bearer not.a.jwt", Anonymous},
		{"no sub claim", "Bearer " + noSub, Anonymous},
		{"blank sub", "Bearer " + blankSub, Anonymous},
		{"non-string sub", "Bearer " + numericSub, Anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectFromHeader(tt.header))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	assert.Equal(t, Anonymous, GetUserID(context.Background()))
	ctx := SetUserIDInContext(context.Background(), "alice")
	assert.Equal(t, "alice", GetUserID(ctx))
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	token := signed(t, jwt.MapClaims{"sub": "alice"})

	var fromEcho, fromCtx string
	handler := Middleware()(func(c echo.Context) error {
		fromEcho = Subject(c)
		fromCtx = GetUserID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "alice", fromEcho)
	assert.Equal(t, "alice", fromCtx)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, Anonymous, fromEcho)
}
