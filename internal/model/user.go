package model

import "time"

// Identity carries the sender attributes delivered with every inbound event.
type Identity struct {
	ExternalID string
	Handle     string
	FirstName  string
	LastName   string
}

// User is a persisted chat participant. Created lazily on first interaction;
// display attributes are refreshed whenever the transport reports new ones.
type User struct {
	CreatedAt  time.Time
	ID         string
	ExternalID string
	Handle     string
	FirstName  string
	LastName   string
}
