package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/user"
)

// "roles" is a TEXT[] column so rows are scanned by hand via pq.Array.
const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db core.DBExecutor
}

var (
	_ user.Repository = (*userRepository)(nil) // interface compliance check
	_ core.DBExecutor = (*sqlx.DB)(nil)
)

func NewUserRepository(db core.DBExecutor) user.Repository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (user.User, error) {
	var usr user.User
	var lastLogin sql.NullTime
	err := row.Scan(&usr.ID, &usr.Name, &usr.Username, &usr.Email, &usr.IsActive,
		pq.Array(&usr.Roles), &usr.PasswordHash, &usr.CreatedAt, &usr.UpdatedAt, &lastLogin)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "scanning user")
	}
	if lastLogin.Valid {
		usr.LastLogin = lastLogin.Time
	}
	return usr, nil
}

func (repo *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	defer func() { _ = rows.Close() }()

	var users []user.User
	for rows.Next() {
		usr, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, errors.Wrap(rows.Err(), "iterating users")
}

func (repo *userRepository) getUser(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	return scanUser(repo.db.QueryRowContext(ctx, query, args...))
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM "user" WHERE (username = ? OR email = ?)`
	inArgs := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = usr.ID
		}
		query += ` AND id NOT IN (?)`
		inArgs = append(inArgs, ids)
	}
	query, args, err := sqlx.In(query+` LIMIT 1`, inArgs...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness check")
	}

	rows, err := repo.db.QueryContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var uname, mail string
		if err = rows.Scan(&uname, &mail); err != nil {
			return errors.Wrap(err, "checking uniqueness")
		}
		if username != "" && uname == username {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	}
	return errors.Wrap(rows.Err(), "checking uniqueness")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	var lastLogin interface{}
	if !usr.LastLogin.IsZero() {
		lastLogin = usr.LastLogin
	}
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO "user" (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles),
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, lastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.queryUsers(ctx, `SELECT `+userColumns+` FROM "user" ORDER BY created_at DESC`)
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userColumns+` FROM "user" WHERE username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT `+userColumns+` FROM "user" WHERE username = $1 OR email = $1`, username)
}

// orderable whitelists the columns FilterUsers accepts orderings on.
var orderable = map[string]bool{
	"name":       true,
	"username":   true,
	"email":      true,
	"is_active":  true,
	"created_at": true,
	"last_login": true,
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"`
	var where string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	and := func(cond string) {
		if where == "" {
			where = ` WHERE ` + cond
		} else {
			where += ` AND ` + cond
		}
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		and(`(name ILIKE ` + p + ` OR username ILIKE ` + p + ` OR email ILIKE ` + p + `)`)
	}
	if len(filter.Roles) > 0 {
		// role prefixes: "admin:" matches "admin:owner" too
		var conds []string
		for _, role := range filter.Roles {
			conds = append(conds, `EXISTS (SELECT 1 FROM unnest(roles) r WHERE r LIKE `+arg(role+"%")+`)`)
		}
		and(`(` + strings.Join(conds, " OR ") + `)`)
	}
	if filter.IsActive != nil {
		and(`is_active = ` + arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		and(`created_at >= ` + arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		and(`created_at <= ` + arg(filter.CreatedTo.UTC()))
	}

	orderBy := ` ORDER BY created_at DESC`
	var orders []string
	for _, ord := range orderings {
		if orderable[ord.Field] {
			orders = append(orders, ord.String())
		}
	}
	if len(orders) > 0 {
		orderBy = ` ORDER BY ` + strings.Join(orders, ", ")
	}

	return repo.queryUsers(ctx, query+where+orderBy, args...)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	// only set fields overwrite stored values
	sets := []string{`name = $1`, `username = $2`, `email = $3`, `updated_at = $4`}
	args := []interface{}{usr.Name, usr.Username, usr.Email, usr.UpdatedAt}
	set := func(clause string, v interface{}) {
		args = append(args, v)
		sets = append(sets, clause+` = $`+strconv.Itoa(len(args)))
	}
	if usr.Roles != nil {
		set(`roles`, pq.Array(usr.Roles))
	}
	if usr.PasswordHash != nil {
		set(`password_hash`, usr.PasswordHash)
	}
	if isActive != nil {
		set(`is_active`, *isActive)
	}
	if !usr.LastLogin.IsZero() {
		set(`last_login`, usr.LastLogin)
	}
	args = append(args, usr.ID)

	res, err := repo.db.ExecContext(ctx,
		`UPDATE "user" SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building user delete")
	}
	_, err = repo.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	return errors.Wrap(err, "deleting users")
}
