package service

import (
	"context"
	"strings"

	"filmrate/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
}

type FriendshipsStore interface {
	AddFriend(ctx context.Context, userID, friendID int64) error
	DeleteFriend(ctx context.Context, userID, friendID int64) error
	ListFriends(ctx context.Context, userID int64) ([]domain.User, error)
	ListCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error)
}

type UsersService struct {
	Users       UsersStore
	Friendships FriendshipsStore
}

func (s *UsersService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.ListUsers(ctx)
}

func (s *UsersService) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.Users.GetUserByID(ctx, id)
}

func (s *UsersService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	taken, err := s.Users.EmailInUse(ctx, user.Email, 0)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, domain.ErrDuplicateData
	}

	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	return s.Users.CreateUser(ctx, user)
}

func (s *UsersService) Update(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == 0 {
		return domain.User{}, domain.NewValidationError(map[string]string{"id": "required"})
	}

	exists, err := s.Users.UserExists(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	if !exists {
		return domain.User{}, domain.ErrNotFound
	}

	// A user keeping their own email is not a duplicate.
	taken, err := s.Users.EmailInUse(ctx, user.Email, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, domain.ErrDuplicateData
	}

	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	return s.Users.UpdateUser(ctx, user)
}

func (s *UsersService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}
	return s.Friendships.AddFriend(ctx, userID, friendID)
}

func (s *UsersService) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}
	return s.Friendships.DeleteFriend(ctx, userID, friendID)
}

func (s *UsersService) Friends(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}
	return s.Friendships.ListFriends(ctx, userID)
}

func (s *UsersService) CommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	if err := s.requireUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}
	return s.Friendships.ListCommonFriends(ctx, userID, otherID)
}

func (s *UsersService) requireUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		exists, err := s.Users.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}
