package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"filmrate/internal/domain"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (email, login, name, birthday)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`

	err := s.pool.QueryRow(ctx, q, user.Email, user.Login, user.Name, user.Birthday.Time).Scan(&user.ID)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "users_email_uq" {
			return domain.User{}, domain.ErrDuplicateData
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	user.FriendIDs = []int64{}
	return user, nil
}

func (s *UsersStore) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		UPDATE users
		SET email = $2, login = $3, name = $4, birthday = $5
		WHERE user_id = $1
	`

	ct, err := s.pool.Exec(ctx, q, user.ID, user.Email, user.Login, user.Name, user.Birthday.Time)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "users_email_uq" {
			return domain.User{}, domain.ErrDuplicateData
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.User{}, domain.ErrNotFound
	}

	return s.GetUserByID(ctx, user.ID)
}

func (s *UsersStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `
		SELECT u.user_id, u.email, u.login, u.name, u.birthday, f.friend_id
		FROM users AS u
		LEFT JOIN friendship AS f
		  ON u.user_id = f.user_id AND f.status_id = $2
		WHERE u.user_id = $1
		ORDER BY f.friend_id
	`

	users, err := s.collectUsers(ctx, q, id, domain.FriendshipConfirmed)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if len(users) == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return users[0], nil
}

func (s *UsersStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	const q = `
		SELECT u.user_id, u.email, u.login, u.name, u.birthday, f.friend_id
		FROM users AS u
		LEFT JOIN friendship AS f
		  ON u.user_id = f.user_id AND f.status_id = $1
		ORDER BY u.user_id, f.friend_id
	`

	users, err := s.collectUsers(ctx, q, domain.FriendshipConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UsersStore) UserExists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (s *UsersStore) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("email in use: %w", err)
	}
	return exists, nil
}

// collectUsers collates one-row-per-friend joins into users with their
// confirmed friend id sets, preserving row order.
func (s *UsersStore) collectUsers(ctx context.Context, q string, args ...any) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out   []domain.User
		index = make(map[int64]int)
	)
	for rows.Next() {
		var (
			id       int64
			email    string
			login    string
			name     string
			birthday pgtype.Date
			friendID pgtype.Int8
		)
		if err := rows.Scan(&id, &email, &login, &name, &birthday, &friendID); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		i, ok := index[id]
		if !ok {
			out = append(out, domain.User{
				ID:        id,
				Email:     email,
				Login:     login,
				Name:      name,
				Birthday:  dateOrZero(birthday),
				FriendIDs: []int64{},
			})
			i = len(out) - 1
			index[id] = i
		}
		if friendID.Valid && friendID.Int64 != id {
			out[i].FriendIDs = append(out[i].FriendIDs, friendID.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
