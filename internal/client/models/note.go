// Package models defines the client-side records persisted in the local
// store.
package models

import "time"

// Note is a locally persisted note.
//
// Id is assigned by the local store and never transmitted. ClientId is a
// stable client-generated identifier used as the idempotency key when the
// note is synced to the remote store: however many sync attempts happen, the
// remote ends up with exactly one document per ClientId.
type Note struct {
	Id        int64
	ClientId  string
	Text      string
	CreatedAt time.Time
	Synced    bool
}
