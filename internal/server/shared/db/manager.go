package db

import (
	"context"
	"database/sql"

	"github.com/talkroom/talkroom/internal/server/members"
	"github.com/talkroom/talkroom/internal/server/rooms"
)

// RepositoryManager bundles the durable stores behind one construction point.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Members() members.Repository
	Rooms() rooms.Repository
	Close() error
}
