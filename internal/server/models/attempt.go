package models

import "time"

// Attempt is one audited verification: who tried which resource and
// what the gate decided. The candidate secret is never stored.
type Attempt struct {
	ID           string
	ResourceKind string
	ResourceID   string
	ClientID     string
	Allowed      bool
	Reason       string
	CreatedAt    time.Time
}
