// Package common defines shared sentinel errors used across the client and
// server layers of NotiApp. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable means the local database could not be opened or
	// migrated. It is fatal to every component that depends on the store.
	ErrStoreUnavailable = errors.New("local store unavailable")

	// Transport-level errors.
	ErrOffline       = errors.New("offline")
	ErrRemoteFailure = errors.New("remote request failed")

	// Push subscription errors.
	ErrUnsupported         = errors.New("push not supported on this platform")
	ErrPermissionDenied    = errors.New("notification permission denied")
	ErrNotSubscribed       = errors.New("not subscribed")
	ErrSubscriptionExpired = errors.New("push subscription expired")
)
