package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/dbx"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

const selectUser = `SELECT id, uuid, name, email, password_hash,
       array_to_string(friend_ids, ','), array_to_string(roles, ','),
       org, email_verified, created_at
  FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, f Filter) (*models.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	column, value := "id", f.ID
	switch {
	case f.UUID != "":
		// the column is typed UUID; a malformed value names no user
		if _, err := uuid.Parse(f.UUID); err != nil {
			return nil, common.ErrorNotFound
		}
		column, value = "uuid", f.UUID
	case f.Email != "":
		column, value = "email", f.Email
	}

	query := selectUser + `
 WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || hasCode(err, invalidTextRepresentation) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (uuid, name, email, password_hash, roles, org, email_verified)
         VALUES ($1, $2, $3, $4, string_to_array($5, ','), $6, $7)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.UUID, user.Name, user.Email, user.PasswordHash,
		strings.Join(user.Roles, ","), user.Org, user.EmailVerified).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch) error {
	query :=
		`UPDATE users
		    SET name = COALESCE($2, name), email = COALESCE($3, email)
		  WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, nullString(patch.Name), nullString(patch.Email))
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
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

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`
 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	var friends, roles string
	if err := s.Scan(&u.ID, &u.UUID, &u.Name, &u.Email, &u.PasswordHash,
		&friends, &roles, &u.Org, &u.EmailVerified, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.FriendIDs = splitList(friends)
	u.Roles = splitList(roles)
	return u, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}
