package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/user-service/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches a filter.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a unique identifier or email is already taken.
	ErrDuplicate = errors.New("user already exists")
)

const uniqueViolation = "23505"

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error)
	Find(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, filter domain.UserFilter, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, filter domain.UserFilter) error
	Ping(ctx context.Context) error
}

// DBTX is the subset of pgx used by the repository; *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pinger interface {
	Ping(ctx context.Context) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, password_hash, role, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role.String(),
		user.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT ` + userColumns + ` FROM users` + where + ` LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (r *userRepository) Find(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, filter domain.UserFilter, changes domain.UserChanges) (*domain.User, error) {
	if changes.Empty() {
		return r.FindOne(ctx, filter)
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if changes.Name != nil {
		args = append(args, *changes.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if changes.Role != nil {
		args = append(args, changes.Role.String())
		sets = append(sets, fmt.Sprintf("role=$%d", len(args)))
	}
	if changes.Active != nil {
		args = append(args, *changes.Active)
		sets = append(sets, fmt.Sprintf("active=$%d", len(args)))
	}
	sets = append(sets, "updated_at=NOW()")

	where, whereArgs := whereClause(filter, len(args)+1)
	args = append(args, whereArgs...)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + where + ` RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, filter domain.UserFilter) error {
	where, args := whereClause(filter, 1)
	cmd, err := r.db.Exec(ctx, `DELETE FROM users`+where, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	p, ok := r.db.(pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

// whereClause renders the filter with placeholders numbered from start.
func whereClause(filter domain.UserFilter, start int) (string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 2)
	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("id=$%d", start+len(args)-1))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email=$%d", start+len(args)-1))
	}
	if filter.ActiveOnly {
		conds = append(conds, "active")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Role = parsed
	return &user, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
