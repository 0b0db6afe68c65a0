package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"filmrate/internal/domain"
)

// FriendshipsStore keeps directed friendship edges with a status flag.
// A one-way edge is a pending request; a confirmed friendship is a pair
// of mirrored edges, both with status confirmed.
type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

// AddFriend records a friend request from userID to friendID. If the
// reverse request is already pending, both edges become confirmed.
// Re-requesting an existing edge and self-requests are no-ops.
func (s *FriendshipsStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return nil
	}

	exists, err := s.edgeExists(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	reverse, err := s.edgeExists(ctx, friendID, userID)
	if err != nil {
		return err
	}

	if reverse {
		const upsert = `
			INSERT INTO friendship (user_id, friend_id, status_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, friend_id) DO UPDATE SET status_id = $3
		`
		if _, err := s.pool.Exec(ctx, upsert, userID, friendID, domain.FriendshipConfirmed); err != nil {
			return fmt.Errorf("confirm friendship: %w", err)
		}

		const confirmReverse = `
			UPDATE friendship SET status_id = $3
			WHERE user_id = $1 AND friend_id = $2
		`
		if _, err := s.pool.Exec(ctx, confirmReverse, friendID, userID, domain.FriendshipConfirmed); err != nil {
			return fmt.Errorf("confirm reverse friendship: %w", err)
		}
		return nil
	}

	const insert = `
		INSERT INTO friendship (user_id, friend_id, status_id)
		VALUES ($1, $2, $3)
	`
	if _, err := s.pool.Exec(ctx, insert, userID, friendID, domain.FriendshipPending); err != nil {
		return fmt.Errorf("create friend request: %w", err)
	}
	return nil
}

// DeleteFriend removes the userID→friendID edge. A surviving reverse edge
// drops back to pending: the broken confirmation leaves the other side's
// original request in place.
func (s *FriendshipsStore) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	exists, err := s.edgeExists(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	const del = `DELETE FROM friendship WHERE user_id = $1 AND friend_id = $2`
	if _, err := s.pool.Exec(ctx, del, userID, friendID); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	const downgrade = `
		UPDATE friendship SET status_id = $3
		WHERE user_id = $1 AND friend_id = $2
	`
	if _, err := s.pool.Exec(ctx, downgrade, friendID, userID, domain.FriendshipPending); err != nil {
		return fmt.Errorf("downgrade reverse friendship: %w", err)
	}
	return nil
}

// ListFriends returns confirmed friends only; pending outgoing requests
// are not visible in the friend list.
func (s *FriendshipsStore) ListFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	const q = `
		SELECT u.user_id, u.email, u.login, u.name, u.birthday, f2.friend_id
		FROM friendship AS f
		JOIN users AS u ON u.user_id = f.friend_id
		LEFT JOIN friendship AS f2
		  ON f2.user_id = u.user_id AND f2.status_id = $2
		WHERE f.user_id = $1 AND f.status_id = $2
		ORDER BY u.user_id, f2.friend_id
	`

	users := &UsersStore{pool: s.pool}
	out, err := users.collectUsers(ctx, q, userID, domain.FriendshipConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}

func (s *FriendshipsStore) ListCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	const q = `
		SELECT u.user_id, u.email, u.login, u.name, u.birthday, f3.friend_id
		FROM users AS u
		JOIN friendship AS f1
		  ON u.user_id = f1.friend_id AND f1.user_id = $1 AND f1.status_id = $3
		JOIN friendship AS f2
		  ON u.user_id = f2.friend_id AND f2.user_id = $2 AND f2.status_id = $3
		LEFT JOIN friendship AS f3
		  ON f3.user_id = u.user_id AND f3.status_id = $3
		ORDER BY u.user_id, f3.friend_id
	`

	users := &UsersStore{pool: s.pool}
	out, err := users.collectUsers(ctx, q, userID, otherID, domain.FriendshipConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list common friends: %w", err)
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}

func (s *FriendshipsStore) edgeExists(ctx context.Context, userID, friendID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM friendship WHERE user_id = $1 AND friend_id = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, userID, friendID).Scan(&exists); err != nil {
		return false, fmt.Errorf("friendship edge exists: %w", err)
	}
	return exists, nil
}
