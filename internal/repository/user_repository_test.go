package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "active", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewUserRepository(mock), mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestUserRepositoryCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "alice", "a@x.com", "hash", "USER", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &domain.User{ID: "u1", Name: "alice", Email: "a@x.com", PasswordHash: "hash", Role: domain.RoleUser, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "alice", "a@x.com", "hash", "SUPERADMIN", true).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Name: "alice", Email: "a@x.com", PasswordHash: "hash", Role: domain.RoleSuperAdmin, Active: true})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryFindOne(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users WHERE id=$1 AND active LIMIT 1`)).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "alice", "a@x.com", "hash", "SUPERADMIN", true, now, now))

	user, err := repo.FindOne(context.Background(), domain.UserFilter{ID: "u1", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, domain.RoleSuperAdmin, user.Role)
	assert.True(t, user.Active)
}

func TestUserRepositoryFindOneNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q(`FROM users WHERE email=$1 LIMIT 1`)).
		WithArgs("nobody@x.com").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.FindOne(context.Background(), domain.UserFilter{Email: "nobody@x.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryFindOneBadRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users WHERE id=$1 LIMIT 1`)).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "alice", "a@x.com", "hash", "ROOT", true, now, now))

	_, err := repo.FindOne(context.Background(), domain.UserFilter{ID: "u1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryFind(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users ORDER BY created_at, id`)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "alice", "a@x.com", "h", "USER", true, now, now).
			AddRow("u2", "bob", "b@x.com", "h", "USER", false, now, now))

	users, err := repo.Find(context.Background(), domain.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].ID)
	assert.False(t, users[1].Active)
}

func TestUserRepositoryFindActiveEmpty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q(`FROM users WHERE active ORDER BY created_at, id`)).
		WillReturnRows(pgxmock.NewRows(userCols))

	users, err := repo.Find(context.Background(), domain.UserFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepositoryUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	name := "new name"
	role := domain.RoleSuperAdmin

	mock.ExpectQuery(q(`UPDATE users SET name=$1, role=$2, updated_at=NOW() WHERE id=$3 AND email=$4 RETURNING`)).
		WithArgs("new name", "SUPERADMIN", "u1", "a@x.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "new name", "a@x.com", "h", "SUPERADMIN", true, now, now))

	user, err := repo.Update(context.Background(),
		domain.UserFilter{ID: "u1", Email: "a@x.com"},
		domain.UserChanges{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "new name", user.Name)
	assert.Equal(t, domain.RoleSuperAdmin, user.Role)
}

func TestUserRepositoryUpdateActiveNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	active := true

	mock.ExpectQuery(q(`UPDATE users SET active=$1, updated_at=NOW() WHERE id=$2 RETURNING`)).
		WithArgs(true, "missing").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.Update(context.Background(), domain.UserFilter{ID: "missing"}, domain.UserChanges{Active: &active})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryUpdateWithoutChangesReads(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users WHERE id=$1 LIMIT 1`)).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("u1", "alice", "a@x.com", "h", "USER", true, now, now))

	user, err := repo.Update(context.Background(), domain.UserFilter{ID: "u1"}, domain.UserChanges{})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
}

func TestUserRepositoryDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(q(`DELETE FROM users WHERE id=$1`)).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q(`DELETE FROM users WHERE id=$1`)).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q(`DELETE FROM users WHERE id=$1`)).
		WithArgs("u2").
		WillReturnError(errors.New("db down"))

	require.NoError(t, repo.Delete(context.Background(), domain.UserFilter{ID: "u1"}))
	assert.ErrorIs(t, repo.Delete(context.Background(), domain.UserFilter{ID: "u1"}), ErrNotFound)

	err := repo.Delete(context.Background(), domain.UserFilter{ID: "u2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepositoryPing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(domain.UserFilter{}, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = whereClause(domain.UserFilter{ID: "a", Email: "b", ActiveOnly: true}, 3)
	assert.Equal(t, " WHERE id=$3 AND email=$4 AND active", where)
	assert.Equal(t, []any{"a", "b"}, args)
}
