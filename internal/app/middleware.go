package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Validate the session token locally and put the acting user into the
	// request context. Requests without a valid token proceed unauthenticated;
	// the services decide what an anonymous caller may do.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			if token := sessionToken(req); token != "" {
				u, err := parseSessionToken(token, cfg.Auth.JwtSecret)
				if err != nil {
					log.Debugf("rejecting session token: %v", err)
				} else {
					ctx = user.WithUser(ctx, u)
				}
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

// sessionToken extracts the token from either the x-auth-token header or an
// Authorization bearer header.
func sessionToken(req *http.Request) string {
	if token := req.Header.Get("x-auth-token"); token != "" {
		return token
	}
	authHeader := req.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// parseSessionToken verifies the HS256 signature the auth service used and
// maps the claims onto a user.
func parseSessionToken(tokenString, secret string) (user.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return user.User{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return user.User{}, fmt.Errorf("invalid token claims")
	}

	u := user.User{
		Id:       stringClaim(claims, "sub"),
		Username: stringClaim(claims, "username"),
		Email:    stringClaim(claims, "email"),
		Role:     user.Role(stringClaim(claims, "role")),
	}
	if u.Id == "" {
		return user.User{}, fmt.Errorf("token carries no subject")
	}
	if !u.Role.Valid() {
		return user.User{}, fmt.Errorf("token carries unknown role %q", u.Role)
	}
	return u, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if value, ok := claims[name].(string); ok {
		return value
	}
	return ""
}
