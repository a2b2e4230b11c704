// Package models holds the reader's local data types.
package models

import "time"

// UnlockRecord says a resource was unlocked on this install. Token is the
// opaque proof the server issued; the secret itself is never kept.
type UnlockRecord struct {
	ResourceKey string
	Unlocked    bool
	Token       string
	UnlockedAt  time.Time
}
