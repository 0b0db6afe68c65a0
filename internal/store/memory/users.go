package memory

import (
	"context"
	"sort"
	"sync"

	"filmrate/internal/domain"
)

// UsersStore is the in-process backing for users and friendship edges.
// It satisfies the same store interfaces as the postgres implementation
// so the two can be swapped at composition time.
type UsersStore struct {
	mu     sync.RWMutex
	users  map[int64]domain.User
	edges  map[int64]map[int64]domain.FriendshipStatus
	nextID int64
}

func NewUsersStore() *UsersStore {
	return &UsersStore{
		users: make(map[int64]domain.User),
		edges: make(map[int64]map[int64]domain.FriendshipStatus),
	}
}

func (s *UsersStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user.ID = s.nextID
	user.FriendIDs = nil
	s.users[user.ID] = user

	return s.snapshot(user.ID), nil
}

func (s *UsersStore) UpdateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return domain.User{}, domain.ErrNotFound
	}
	user.FriendIDs = nil
	s.users[user.ID] = user

	return s.snapshot(user.ID), nil
}

func (s *UsersStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.snapshot(id))
	}
	return out, nil
}

func (s *UsersStore) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.snapshot(id), nil
}

func (s *UsersStore) UserExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok, nil
}

func (s *UsersStore) EmailInUse(_ context.Context, email string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, u := range s.users {
		if id != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// AddFriend runs the friendship state machine: a lone request stays
// pending, a matching reverse request confirms both directions.
func (s *UsersStore) AddFriend(_ context.Context, userID, friendID int64) error {
	if userID == friendID {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edge(userID, friendID); ok {
		return nil
	}

	if _, ok := s.edge(friendID, userID); ok {
		s.setEdge(userID, friendID, domain.FriendshipConfirmed)
		s.setEdge(friendID, userID, domain.FriendshipConfirmed)
		return nil
	}

	s.setEdge(userID, friendID, domain.FriendshipPending)
	return nil
}

// DeleteFriend drops the direct edge; a surviving reverse edge reverts
// to pending.
func (s *UsersStore) DeleteFriend(_ context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edge(userID, friendID); !ok {
		return nil
	}
	delete(s.edges[userID], friendID)

	if _, ok := s.edge(friendID, userID); ok {
		s.setEdge(friendID, userID, domain.FriendshipPending)
	}
	return nil
}

func (s *UsersStore) ListFriends(_ context.Context, userID int64) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.User{}
	for _, id := range s.confirmedFriendIDs(userID) {
		out = append(out, s.snapshot(id))
	}
	return out, nil
}

func (s *UsersStore) ListCommonFriends(_ context.Context, userID, otherID int64) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	otherFriends := make(map[int64]bool)
	for _, id := range s.confirmedFriendIDs(otherID) {
		otherFriends[id] = true
	}

	out := []domain.User{}
	for _, id := range s.confirmedFriendIDs(userID) {
		if otherFriends[id] {
			out = append(out, s.snapshot(id))
		}
	}
	return out, nil
}

func (s *UsersStore) edge(from, to int64) (domain.FriendshipStatus, bool) {
	status, ok := s.edges[from][to]
	return status, ok
}

func (s *UsersStore) setEdge(from, to int64, status domain.FriendshipStatus) {
	m, ok := s.edges[from]
	if !ok {
		m = make(map[int64]domain.FriendshipStatus)
		s.edges[from] = m
	}
	m[to] = status
}

func (s *UsersStore) confirmedFriendIDs(userID int64) []int64 {
	ids := make([]int64, 0, len(s.edges[userID]))
	for id, status := range s.edges[userID] {
		if status == domain.FriendshipConfirmed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// snapshot copies a stored user with its confirmed friend ids filled in.
// Callers must hold the lock.
func (s *UsersStore) snapshot(id int64) domain.User {
	u := s.users[id]
	u.FriendIDs = s.confirmedFriendIDs(id)
	return u
}
