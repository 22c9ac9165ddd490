package edges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/dbx"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, fingerprint uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE fingerprint = $1)`,
		int64(fingerprint)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Get(ctx context.Context, fingerprint uint64) (*models.Edge, error) {
	var (
		e  models.Edge
		fp int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT fingerprint, user1_id, user2_id, created_at FROM friendships WHERE fingerprint = $1`,
		int64(fingerprint)).Scan(&fp, &e.User1ID, &e.User2ID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Fingerprint = uint64(fp)
	return &e, nil
}

func (r *PostgresRepository) Neighbors(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT unnest(friend_ids) FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, edge *models.Edge) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO friendships (fingerprint, user1_id, user2_id)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (fingerprint) DO NOTHING
			 RETURNING created_at`,
			int64(edge.Fingerprint), edge.User1ID, edge.User2ID).Scan(&edge.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return common.ErrConflict
			case isForeignKeyViolation(err):
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if err := appendFriend(ctx, tx, edge.User1ID, edge.User2ID); err != nil {
			return err
		}
		return appendFriend(ctx, tx, edge.User2ID, edge.User1ID)
	})
}

func appendFriend(ctx context.Context, tx dbx.DBTX, userID, friendID string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET friend_ids = array_append(friend_ids, $2) WHERE id = $1`,
		userID, friendID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
