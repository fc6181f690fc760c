// Package provider implements auth.SessionProvider in-process: password
// accounts with bcrypt hashes, HMAC-signed access/refresh tokens, Google and
// GitHub OAuth through redirect flows with one-time CSRF state, and a
// session-change stream.
//
// It stands in for a hosted auth backend during development and in tests, and
// doubles as the demo deployment's real backend. It deliberately models one
// current session per provider instance, matching the single-client view the
// auth layer was designed around.
package provider
