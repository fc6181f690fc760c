// Package profilecache persists the LINE profile for warm-start display.
//
// The cached profile is a rendering hint only: it lets the UI show a display
// name and avatar before the session check completes. It is never consulted
// for authentication decisions. The controller writes it on profile refresh
// and clears it on sign-out.
package profilecache
