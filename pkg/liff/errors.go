package liff

import "errors"

var (
	// ErrMissingLiffID is returned when LINE paths are exercised without a configured LIFF ID.
	ErrMissingLiffID = errors.New("LIFF ID is required for LINE authentication")

	// ErrNotInitialized is returned when a call requires a completed Init first.
	ErrNotInitialized = errors.New("LIFF client not initialized")

	// ErrProfileFetch wraps any underlying failure while retrieving the LINE profile.
	ErrProfileFetch = errors.New("failed to fetch LINE profile")
)
