// Package auth orchestrates authentication for MoneyFlow: email/password
// sign-in and sign-up, redirect-based OAuth (Google/GitHub), LINE sign-in via
// the LIFF client, sign-out, session retrieval, and session-change
// subscriptions.
//
// The package does not issue sessions itself. It drives an external
// SessionProvider (a hosted auth backend, or the local in-process provider
// from pkg/provider) and reconciles it with LINE's identity service into one
// consistent view. Every user-initiated operation funnels provider failures
// through a single normalizer producing *Error values with a user-facing
// message and optional machine code; best-effort background steps such as
// profile sync only log their failures.
//
// Redirect-based flows (OAuth, LINE login) are modeled as two disjoint
// operations: the first returns the URL to redirect to, the second is the
// callback-route code exchange. No in-memory state survives the redirect
// boundary.
package auth
