package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	userIDCtxKey = ctxKey("userID")
	roleCtxKey   = ctxKey("role")
)

// TokenTTL is the lifetime of issued bearer tokens.
const TokenTTL = 72 * time.Hour

const issuer = "go-freelance"

// UserVerifier is an optional callback to validate that a token's user still exists/is allowed.
// Set it during app bootstrap via SetUserVerifier. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// Secret returns JWT_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "devtokensecret"
}

// Claims carries the role next to the registered claim set; the user id
// travels in the subject.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the given user.
func IssueToken(userID uint, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(Secret()))
}

// ParseToken validates a raw token and returns the user id and role.
func ParseToken(raw string) (uint, string, bool) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(Secret()), nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, "", false
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id64 == 0 {
		return 0, "", false
	}
	return uint(id64), claims.Role, true
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithUser stores user id and role in context.
func WithUser(ctx context.Context, userID uint, role string) context.Context {
	ctx = context.WithValue(ctx, userIDCtxKey, userID)
	return context.WithValue(ctx, roleCtxKey, role)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// RoleFromContext extracts the role.
func RoleFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(roleCtxKey)
	if v == nil {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// Middleware attaches the authenticated identity to the request context
// if a valid bearer token is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := BearerToken(r); ok {
			if uid, role, ok := ParseToken(raw); ok {
				r = r.WithContext(WithUser(r.Context(), uid, role))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects unauthenticated requests with a 401 JSON body.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			unauthorized(w)
			return
		}
		if verifier != nil && !verifier(r.Context(), uid) {
			// Token refers to a non-existing/disabled user.
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"unauthorized"}`)
}
