// Package broadcast provides in-process fan-out of events to multiple
// subscribers. The session provider uses it to deliver auth state changes to
// every listening controller.
//
// Delivery is non-blocking: a subscriber that stops draining its channel has
// further events dropped rather than stalling the publisher. Events that are
// delivered arrive in publish order.
package broadcast
