package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/talkroom/talkroom/internal/server/members"
	"github.com/talkroom/talkroom/internal/server/migrations"
	"github.com/talkroom/talkroom/internal/server/rooms"
)

type PostgresRepositoryManager struct {
	db      *sql.DB
	members members.Repository
	rooms   rooms.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Members() members.Repository {
	return m.members
}

func (m *PostgresRepositoryManager) Rooms() rooms.Repository {
	return m.rooms
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:      db,
		members: members.NewPostgresRepository(db),
		rooms:   rooms.NewPostgresRepository(db),
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
