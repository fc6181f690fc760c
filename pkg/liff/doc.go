// Package liff wraps LINE's in-app identity service behind a single
// capability interface with two interchangeable implementations: an HTTP
// adapter for the real LINE endpoints and an always-authenticated mock for
// development and tests.
//
// Client is the piece the rest of the application talks to. It selects an
// implementation once at construction time, initializes lazily on first use,
// and fails closed (IsLoggedIn/IsInClient report false, GetAccessToken
// errors) until initialization has succeeded. A failed initialization leaves
// the client uninitialized so the next call retries instead of poisoning it.
package liff
