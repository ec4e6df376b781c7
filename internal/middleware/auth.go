package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/dibasaye/finance-manager/internal/service"
)

// Auth authenticates requests with a Bearer JWT and attaches the acting user
// to the request context.
type Auth struct {
	secret []byte
	log    *logrus.Logger
}

// NewAuth initializes the auth middleware
func NewAuth(secret string, log *logrus.Logger) *Auth {
	return &Auth{secret: []byte(secret), log: log}
}

// Handler wraps next with token verification. Requests without a valid token
// are rejected with 401.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.authenticate(r)
		if err != nil {
			a.log.WithError(err).WithField("path", r.URL.Path).Debug("authentication rejected")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(service.ContextWithActor(r.Context(), actor)))
	})
}

func (a *Auth) authenticate(r *http.Request) (service.Actor, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return service.Actor{}, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return service.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return service.Actor{}, fmt.Errorf("unexpected claims type")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return service.Actor{}, fmt.Errorf("missing subject claim")
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	return service.Actor{
		UserID:   int64(sub),
		Username: username,
		Role:     role,
		IP:       clientIP(r),
	}, nil
}

// clientIP extracts the caller address, honoring X-Forwarded-For behind a
// proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
