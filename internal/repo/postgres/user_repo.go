package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	id,
	first_name,
	last_name,
	email,
	country_code,
	phone,
	city,
	push_token,
	bookmarked,
	alerted,
	created_at,
	deleted_at
`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1 AND deleted_at IS NULL
`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return r.listUsers(ctx, `
SELECT `+userColumns+`
FROM users
WHERE deleted_at IS NULL AND id = ANY($1)
`, ids)
}

func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	return r.listUsers(ctx, `
SELECT `+userColumns+`
FROM users
WHERE deleted_at IS NULL
`)
}

// ListByCityPattern matches users whose city contains the pattern,
// case-insensitively.
func (r *UserRepo) ListByCityPattern(ctx context.Context, city string) ([]model.User, error) {
	pattern := "%" + strings.TrimSpace(city) + "%"
	return r.listUsers(ctx, `
SELECT `+userColumns+`
FROM users
WHERE deleted_at IS NULL AND city ILIKE $1
`, pattern)
}

// AppendAlerted records that the user has been notified about a
// listing. Duplicate-safe and atomic on the row.
func (r *UserRepo) AppendAlerted(ctx context.Context, userID, listingID uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users SET alerted = array_append(alerted, $2)
WHERE id = $1 AND NOT (alerted @> ARRAY[$2]::uuid[])
`, userID, listingID); err != nil {
		return fmt.Errorf("append alerted listing: %w", err)
	}

	return nil
}

func (r *UserRepo) listUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	if r.pool == nil {
		return []model.User{}, nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, 16)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return users, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.CountryCode,
		&user.Phone,
		&user.City,
		&user.PushToken,
		&user.Bookmarked,
		&user.Alerted,
		&user.CreatedAt,
		&user.DeletedAt,
	); err != nil {
		return model.User{}, err
	}
	return user, nil
}
