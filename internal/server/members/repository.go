package members

import (
	"context"
	"time"
)

// Repository is the durable member store. It owns the member records and is
// the authoritative source for id uniqueness.
type Repository interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	// Create persists a new member. A store-level uniqueness violation is
	// returned as common.ErrDuplicateMemberID.
	Create(ctx context.Context, member *Member) (*Member, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// CredentialCache is a non-owning, best-effort mirror of member credentials
// used only to short-circuit duplicate checks. A cache miss says nothing; it
// must always be re-validated against the Repository.
type CredentialCache interface {
	Exists(id string) bool
	Add(id string, passwordHash string, createdAt time.Time)
	Remove(id string)
}
