// Package members implements the member identity lifecycle: registration,
// authentication and credential change over a durable postgres store and a
// best-effort credential cache.
package members

import "time"

// Member is the durable identity record. PasswordHash is a bcrypt hash and
// must never leave the service layer.
type Member struct {
	ID           string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenResponse pairs a member id with a freshly issued bearer token.
type TokenResponse struct {
	MemberID string
	Token    string
}
