package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// routerWithProbe returns a router whose only route reports the user the
// middleware put into the request context.
func routerWithProbe(t *testing.T) (*mux.Router, *user.User) {
	t.Helper()
	cfg := config.Application{Auth: config.Auth{JwtSecret: testSecret}}
	r := mux.NewRouter()
	SetupMiddleware(r, nil, cfg)

	seen := &user.User{}
	r.HandleFunc("/probe", func(w http.ResponseWriter, req *http.Request) {
		u, err := user.CurrentUser(req.Context())
		if err == nil {
			*seen = u
		}
		w.WriteHeader(http.StatusOK)
	})
	return r, seen
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "u-1",
		"username": "anna",
		"email":    "anna@example.com",
		"role":     "organizer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestSessionMiddleware(t *testing.T) {
	t.Run("valid x-auth-token injects the user", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("x-auth-token", signToken(t, validClaims(), testSecret))

		// when
		router.ServeHTTP(httptest.NewRecorder(), req)

		// then
		assert.Equal(t, user.User{Id: "u-1", Username: "anna", Email: "anna@example.com", Role: user.RoleOrganizer}, *seen)
	})

	t.Run("bearer authorization header works too", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), testSecret))

		// when
		router.ServeHTTP(httptest.NewRecorder(), req)

		// then
		assert.Equal(t, "u-1", seen.Id)
	})

	t.Run("request without a token proceeds unauthenticated", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		req := httptest.NewRequest("GET", "/probe", nil)
		recorder := httptest.NewRecorder()

		// when
		router.ServeHTTP(recorder, req)

		// then
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, seen.IsZero())
	})

	t.Run("token signed with the wrong secret is ignored", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("x-auth-token", signToken(t, validClaims(), "other-secret"))

		// when
		router.ServeHTTP(httptest.NewRecorder(), req)

		// then
		assert.True(t, seen.IsZero())
	})

	t.Run("expired token is ignored", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("x-auth-token", signToken(t, claims, testSecret))

		// when
		router.ServeHTTP(httptest.NewRecorder(), req)

		// then
		assert.True(t, seen.IsZero())
	})

	t.Run("token with an unknown role is ignored", func(t *testing.T) {
		// given
		router, seen := routerWithProbe(t)
		claims := validClaims()
		claims["role"] = "superuser"
		req := httptest.NewRequest("GET", "/probe", nil)
		req.Header.Set("x-auth-token", signToken(t, claims, testSecret))

		// when
		router.ServeHTTP(httptest.NewRecorder(), req)

		// then
		assert.True(t, seen.IsZero())
	})
}
