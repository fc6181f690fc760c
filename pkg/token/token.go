package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = errors.New("signature mismatch")
	ErrTokenExpired     = errors.New("token expired")
)

// Token kinds issued by the session provider.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// SessionClaims is the payload carried by access and refresh tokens.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Kind     string `json:"kind"`
	ExpireAt int64  `json:"exp"`
}

// Expired reports whether the claims are past their expiry.
func (c SessionClaims) Expired() bool {
	return time.Now().Unix() > c.ExpireAt
}

// Generate signs the payload with HMAC-SHA256 and returns the compact form.
func Generate[T any](payload T, secret string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)

	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// Parse verifies the token signature and decodes the payload.
func Parse[T any](tok string, secret string) (T, error) {
	var payload T

	payloadEnc, sigEnc, ok := strings.Cut(tok, ".")
	if !ok {
		return payload, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return payload, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return payload, ErrInvalidToken
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	if subtle.ConstantTimeCompare(sig, h.Sum(nil)) != 1 {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, ErrInvalidToken
	}
	return payload, nil
}

// ParseSession parses session claims and enforces expiry.
func ParseSession(tok string, secret string) (SessionClaims, error) {
	claims, err := Parse[SessionClaims](tok, secret)
	if err != nil {
		return SessionClaims{}, err
	}
	if claims.Expired() {
		return SessionClaims{}, ErrTokenExpired
	}
	return claims, nil
}
