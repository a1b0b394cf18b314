package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/talkroom/talkroom/internal/common"
)

// uniqueViolation is the SQLSTATE reported by postgres when an insert breaks
// a unique constraint.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)
		 `

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Member, error) {
	query :=
		`SELECT id, password_hash, created_at FROM members
		 WHERE id = $1
		 `

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&member.ID, &member.PasswordHash, &member.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMemberNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return member, nil
}

func (r *PostgresRepository) Create(ctx context.Context, member *Member) (*Member, error) {
	query :=
		`INSERT INTO members (id, password_hash)
		 VALUES ($1, $2)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, member.ID, member.PasswordHash).Scan(&member.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrDuplicateMemberID
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return member, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE members SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrMemberNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM members
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrMemberNotFound
	}

	return nil
}
