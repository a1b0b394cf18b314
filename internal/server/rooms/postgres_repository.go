package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/talkroom/talkroom/internal/common"
	"github.com/talkroom/talkroom/internal/dbx"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query :=
		`SELECT id, name, password, admin_id, created_at FROM rooms
		 WHERE id = $1
		 `

	room := &Room{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&room.ID, &room.Name, &room.Password, &room.AdminID, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRoomNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	room.Members, err = loadMembers(ctx, r.db, room.ID)
	if err != nil {
		return nil, err
	}

	return room, nil
}

// Create persists the room row and its initial membership rows in one
// transaction, so a room is never visible without its admin.
func (r *PostgresRepository) Create(ctx context.Context, room *Room) (*Room, error) {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`INSERT INTO rooms (id, name, password, admin_id)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at
			 `

		err := tx.QueryRowContext(ctx, query, room.ID, room.Name, room.Password, room.AdminID).
			Scan(&room.CreatedAt)
		if err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}

		for _, memberID := range room.Members {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO room_members (room_id, member_id)
				 VALUES ($1, $2)
				 ON CONFLICT DO NOTHING
				 `, room.ID, memberID)
			if err != nil {
				return fmt.Errorf("error performing sql request: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return room, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	// room_members rows go with the room via ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rooms
		 WHERE id = $1
		 `, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrRoomNotFound
	}

	return nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, roomID, memberID string) error {
	// single-statement set add; the composite primary key gives idempotence
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO room_members (room_id, member_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `, roomID, memberID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveMember(ctx context.Context, roomID, memberID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM room_members
		 WHERE room_id = $1 AND member_id = $2
		 `, roomID, memberID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, page, size int) ([]*Room, error) {
	query :=
		`SELECT id, name, password, admin_id, created_at FROM rooms
		 ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2
		 `

	return r.queryRooms(ctx, query, size, page*size)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) SearchByName(ctx context.Context, title string, page, size int) ([]*Room, error) {
	query :=
		`SELECT id, name, password, admin_id, created_at FROM rooms
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3
		 `

	return r.queryRooms(ctx, query, title, size, page*size)
}

func (r *PostgresRepository) ListByMember(ctx context.Context, memberID string) ([]*Room, error) {
	query :=
		`SELECT r.id, r.name, r.password, r.admin_id, r.created_at FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.member_id = $1
		 ORDER BY r.created_at DESC, r.id
		 `

	return r.queryRooms(ctx, query, memberID)
}

func (r *PostgresRepository) queryRooms(ctx context.Context, query string, args ...any) ([]*Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]*Room, 0)
	for rows.Next() {
		room := &Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Password, &room.AdminID, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, room := range result {
		room.Members, err = loadMembers(ctx, r.db, room.ID)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func loadMembers(ctx context.Context, q dbx.DBTX, roomID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT member_id FROM room_members
		 WHERE room_id = $1
		 ORDER BY member_id
		 `, roomID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return members, nil
}
