package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"filmrate/internal/domain"
)

type userPayload struct {
	ID       int64       `json:"id"`
	Email    string      `json:"email" validate:"required,email"`
	Login    string      `json:"login" validate:"required"`
	Name     string      `json:"name"`
	Birthday domain.Date `json:"birthday" validate:"-"`

	// Accepted so a user fetched from the API round-trips through PUT;
	// friendships only change via the friend endpoints.
	FriendIDs []int64 `json:"friendsIds"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:       p.ID,
		Email:    p.Email,
		Login:    p.Login,
		Name:     p.Name,
		Birthday: p.Birthday,
	}
}

func (a *api) validateUserPayload(p userPayload) map[string]string {
	fields := a.validateStruct(p)
	if fields == nil {
		fields = map[string]string{}
	}

	if _, ok := fields["login"]; !ok && strings.ContainsFunc(p.Login, unicode.IsSpace) {
		fields["login"] = "must not contain whitespace"
	}
	if p.Birthday.IsZero() {
		fields["birthday"] = "required"
	} else if p.Birthday.After(time.Now()) {
		fields["birthday"] = "must not be in the future"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (a *api) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.usersSvc.List(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

func (a *api) handleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := a.validateUserPayload(req); fields != nil {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	user, err := a.usersSvc.Create(r.Context(), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

func (a *api) handleUsersUpdate(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := a.validateUserPayload(req); fields != nil {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	user, err := a.usersSvc.Update(r.Context(), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (a *api) handleUsersGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	user, err := a.usersSvc.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (a *api) handleFriendsAdd(w http.ResponseWriter, r *http.Request) {
	id, friendID, err := pathIDPair(r, "id", "friendId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.usersSvc.AddFriend(r.Context(), id, friendID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsDelete(w http.ResponseWriter, r *http.Request) {
	id, friendID, err := pathIDPair(r, "id", "friendId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.usersSvc.DeleteFriend(r.Context(), id, friendID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	friends, err := a.usersSvc.Friends(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, friends)
}

func (a *api) handleFriendsCommon(w http.ResponseWriter, r *http.Request) {
	id, otherID, err := pathIDPair(r, "id", "otherId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	friends, err := a.usersSvc.CommonFriends(r.Context(), id, otherID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, friends)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

func pathIDPair(r *http.Request, first, second string) (int64, int64, error) {
	a, err := pathID(r, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := pathID(r, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
