package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	adminClaimsKey contextKey = "adminClaims"
	patientIDKey   contextKey = "patientID"
)

// AdminJWT enforces an HMAC-signed JWT for operator endpoints.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return bearerJWT(secret, "admin auth disabled", func(r *http.Request, claims jwt.RegisteredClaims) context.Context {
		return context.WithValue(r.Context(), adminClaimsKey, claims)
	})
}

// PatientJWT enforces an HMAC-signed JWT whose subject is the patient id.
func PatientJWT(secret string) func(http.Handler) http.Handler {
	return bearerJWT(secret, "patient auth disabled", func(r *http.Request, claims jwt.RegisteredClaims) context.Context {
		return context.WithValue(r.Context(), patientIDKey, claims.Subject)
	})
}

func bearerJWT(secret, disabledMsg string, attach func(*http.Request, jwt.RegisteredClaims) context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, disabledMsg, http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := parseToken(strings.TrimPrefix(auth, "Bearer "), secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(attach(r, claims)))
		})
	}
}

func parseToken(tokenString, secret string) (jwt.RegisteredClaims, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return jwt.RegisteredClaims{}, err
	}
	if !token.Valid {
		return jwt.RegisteredClaims{}, jwt.ErrTokenInvalidClaims
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return jwt.RegisteredClaims{}, errors.New("middleware: token has no subject")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject. Used by operator tooling and tests.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("middleware: signing secret is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AdminClaimsFromContext returns admin JWT claims if present.
func AdminClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

// PatientIDFromContext returns the authenticated patient id.
func PatientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(patientIDKey).(string)
	return id, ok && id != ""
}

// WithPatientID returns ctx carrying an authenticated patient id.
func WithPatientID(ctx context.Context, patientID string) context.Context {
	return context.WithValue(ctx, patientIDKey, patientID)
}
