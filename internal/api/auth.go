package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// TokenDuration bounds how long a session token stays valid.
	TokenDuration = 12 * time.Hour

	tokenIssuer = "hungerium"
)

var (
	errMissingToken = errors.New("missing token")
	errWrongSession = errors.New("token not valid for this session")
)

// SessionClaims bind a token to one player and one session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// TokenIssuer signs and verifies session tokens (HS256).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret generates a random one,
// so tokens do not survive a restart.
func NewTokenIssuer(secret string, log *zap.Logger) *TokenIssuer {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("generate token secret: %v", err))
		}
		if log != nil {
			log.Info("token secret not configured, using a per-process key")
		}
	}
	return &TokenIssuer{secret: key, ttl: TokenDuration, now: time.Now}
}

// Issue returns a signed token for playerID in sessionID.
func (ti *TokenIssuer) Issue(playerID, sessionID string) (string, time.Time, error) {
	now := ti.now()
	exp := now.Add(ti.ttl)
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns its claims.
func (ti *TokenIssuer) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// tokenFromRequest reads a bearer token, or the token query parameter for
// websocket upgrades where browsers cannot set headers.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	return r.URL.Query().Get("token")
}

// RequireSession rejects requests whose token is missing, invalid or
// issued for a different session than the {id} URL parameter.
func (ti *TokenIssuer) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			writeError(w, errMissingToken.Error(), http.StatusUnauthorized)
			return
		}
		claims, err := ti.Parse(raw)
		if err != nil {
			writeError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if id := chi.URLParam(r, "id"); id != "" && id != claims.SessionID {
			writeError(w, errWrongSession.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// ClaimsFrom returns the verified claims stored by RequireSession.
func ClaimsFrom(ctx context.Context) (*SessionClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*SessionClaims)
	return c, ok
}
