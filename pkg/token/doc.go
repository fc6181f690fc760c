// Package token implements the compact signed tokens the local session
// provider issues as access and refresh credentials.
//
// A token is base64url(JSON payload) + "." + base64url(HMAC-SHA256 signature).
// Tokens are opaque to callers; only the issuing provider holds the secret and
// can parse them back into claims.
package token
