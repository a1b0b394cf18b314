package rooms

import "context"

// Repository is the durable room store. AddMember and RemoveMember are atomic
// set operations executed inside the store; callers never read-modify-write
// the membership set.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Room, error)
	Create(ctx context.Context, room *Room) (*Room, error)
	Delete(ctx context.Context, id string) error

	// AddMember adds memberID to the room's membership set. Adding a member
	// that is already present is a no-op.
	AddMember(ctx context.Context, roomID, memberID string) error
	// RemoveMember removes memberID from the room's membership set. Removing
	// an absent member is a no-op.
	RemoveMember(ctx context.Context, roomID, memberID string) error

	List(ctx context.Context, page, size int) ([]*Room, error)
	Count(ctx context.Context) (int64, error)
	SearchByName(ctx context.Context, title string, page, size int) ([]*Room, error)
	ListByMember(ctx context.Context, memberID string) ([]*Room, error)
}
