// Package authstate keeps an in-memory, observable snapshot of the
// authentication state for one runtime context: the current user and session,
// the detected access method, the LINE profile when relevant, and a loading
// flag that is set during the initial sequence and cleared exactly once.
//
// The controller drives the auth service but owns no credentials itself; the
// session provider remains the source of truth, and the controller converges
// on it through the session-change subscription.
package authstate
