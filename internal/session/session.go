package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the HTTP-only cookie carrying the session token.
const CookieName = "kindwords_session"

// TokenTTL is the fixed session lifetime. There is no server-side
// revocation: logout only clears the cookie, and an already-issued
// token stays valid until this window runs out.
const TokenTTL = 30 * 24 * time.Hour

// Claims embeds the user ID alongside the standard expiry claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Manager signs and verifies session tokens with a server-held secret
// and knows how to attach them to responses.
type Manager struct {
	secret []byte
	secure bool
}

// NewManager returns a Manager signing with secret. secure controls
// the cookie's Secure attribute and should be true outside local
// development.
func NewManager(secret []byte, secure bool) *Manager {
	return &Manager{secret: secret, secure: secure}
}

// Issue mints a signed token for userID expiring TokenTTL from now.
func (m *Manager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded
// user ID. Any failure mode (malformed, bad signature, expired)
// surfaces as an error.
func (m *Manager) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token")
	}

	return claims.UserID, nil
}

// SetCookie attaches the token as an HTTP-only, SameSite=Lax cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// ClearCookie overwrites the session cookie with an expired empty
// value. The token itself remains valid until its natural expiry.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}
