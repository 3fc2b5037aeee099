// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kallan/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]User, error)
	LockByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, params ListUsersParams) ([]User, error)
	ListActiveIDsExcept(ctx context.Context, exclude ...int64) ([]int64, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetAvatar(ctx context.Context, id int64, path *string) error
	IncrementTokenVersion(ctx context.Context, id int64) (int, error)
	GrantPermission(ctx context.Context, id int64, perm string) error
	RevokePermission(ctx context.Context, id int64, perm string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, username, password_hash, tier, avatar_path, force_password_reset,
	is_active, is_staff, is_superuser, token_version, date_joined, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			username, password_hash, tier, force_password_reset,
			is_active, is_staff, is_superuser
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, token_version, date_joined, updated_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Tier,
		user.ForcePasswordReset,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
	)
	err := row.Scan(&user.ID, &user.TokenVersion, &user.DateJoined, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "get user", query, id)
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, "get user by username", query, username)
}

// LockByID takes a row lock on the user for the rest of the enclosing
// transaction. Take operations serialize on it.
func (r *repository) LockByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "lock user", query, id)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*User, error) {
	db := core.Conn(ctx, r.db)

	var user User
	err := db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	perms, err := r.permissionsFor(ctx, db, []int64{user.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Permissions = perms[user.ID]

	return &user, nil
}

func (r *repository) GetMany(
	ctx context.Context,
	ids []int64,
) (map[int64]User, error) {
	result := make(map[int64]User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	db := core.Conn(ctx, r.db)

	query, args, err := sqlx.In(
		`SELECT `+userColumns+` FROM users WHERE id IN (?)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	var users []User
	if err := db.SelectContext(ctx, &users, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	for _, u := range users {
		result[u.ID] = u
	}

	return result, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("username ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.ExcludeID != 0 {
		conditions = append(conditions, fmt.Sprintf("id <> $%d", argIdx))
		args = append(args, params.ExcludeID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT `+userColumns+`
		FROM users
		WHERE %s
		ORDER BY username
		LIMIT $%d`,
		strings.Join(conditions, " AND "), argIdx)

	args = append(args, params.Limit)

	var users []User
	if err := core.Conn(ctx, r.db).SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (r *repository) ListActiveIDsExcept(
	ctx context.Context,
	exclude ...int64,
) ([]int64, error) {
	db := core.Conn(ctx, r.db)

	query := `SELECT id FROM users WHERE is_active ORDER BY id`
	var args []any

	if len(exclude) > 0 {
		q, a, err := sqlx.In(
			`SELECT id FROM users WHERE is_active AND id NOT IN (?) ORDER BY id`,
			exclude,
		)
		if err != nil {
			return nil, fmt.Errorf("list active users: %w", err)
		}
		query, args = db.Rebind(q), a
	}

	var ids []int64
	if err := db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	return ids, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET tier = $2, is_active = $3, is_staff = $4,
		    force_password_reset = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Tier,
		user.IsActive,
		user.IsStaff,
		user.ForcePasswordReset,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", core.ClassifyPgError(err))
	}

	return nil
}

// UpdatePassword also clears a pending forced reset.
func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, force_password_reset = FALSE, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) SetAvatar(
	ctx context.Context,
	id int64,
	path *string,
) error {
	query := `
		UPDATE users
		SET avatar_path = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set avatar", query, id, path)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id int64,
) (int, error) {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING token_version`

	var version int
	err := core.Conn(ctx, r.db).GetContext(ctx, &version, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("increment token version: %w", err)
	}

	return version, nil
}

func (r *repository) GrantPermission(
	ctx context.Context,
	id int64,
	perm string,
) error {
	query := `
		INSERT INTO user_permissions (user_id, permission)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := core.Conn(ctx, r.db).ExecContext(ctx, query, id, perm); err != nil {
		return fmt.Errorf("grant permission: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) RevokePermission(
	ctx context.Context,
	id int64,
	perm string,
) error {
	query := `DELETE FROM user_permissions WHERE user_id = $1 AND permission = $2`

	if _, err := core.Conn(ctx, r.db).ExecContext(ctx, query, id, perm); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}

	return nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

type permissionRow struct {
	UserID     int64  `db:"user_id"`
	Permission string `db:"permission"`
}

func (r *repository) permissionsFor(
	ctx context.Context,
	db core.DBTX,
	ids []int64,
) (map[int64][]string, error) {
	query, args, err := sqlx.In(
		`SELECT user_id, permission FROM user_permissions WHERE user_id IN (?)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	var rows []permissionRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	perms := make(map[int64][]string, len(ids))
	for _, row := range rows {
		perms[row.UserID] = append(perms[row.UserID], row.Permission)
	}

	return perms, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
