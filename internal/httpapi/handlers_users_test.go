package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filmrate/internal/domain"
	"filmrate/internal/service"
	"filmrate/internal/store/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUsersStore()
	films := memory.NewFilmsStore()
	reference := memory.NewReferenceStore()

	return NewRouter(RouterOpts{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Users:  &service.UsersService{Users: users, Friendships: users},
		Films: &service.FilmsService{
			Films:     films,
			Users:     users,
			Reference: reference,
		},
		Reference: &service.ReferenceService{Store: reference},
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, h http.Handler, login string) domain.User {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"login":%q,"name":"","birthday":"1990-04-01"}`, login+"@example.com", login)
	rec := doJSON(t, h, http.MethodPost, "/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user %s: status %d, body %s", login, rec.Code, rec.Body.String())
	}

	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return user
}

func TestUsersCreateBackfillsName(t *testing.T) {
	h := newTestRouter(t)

	user := createUser(t, h, "alice")
	if user.Name != "alice" {
		t.Fatalf("expected blank name backfilled with login, got %q", user.Name)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestUsersCreateRejectsBadPayload(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","login":"bob","birthday":"1990-04-01"}`},
		{"login with space", `{"email":"bob@example.com","login":"bo b","birthday":"1990-04-01"}`},
		{"login with newline", `{"email":"bob@example.com","login":"bo\nb","birthday":"1990-04-01"}`},
		{"login with nbsp", `{"email":"bob@example.com","login":"bo b","birthday":"1990-04-01"}`},
		{"missing birthday", `{"email":"bob@example.com","login":"bob"}`},
		{"future birthday", `{"email":"bob@example.com","login":"bob","birthday":"2999-01-01"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/users", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUsersCreateDuplicateEmailConflicts(t *testing.T) {
	h := newTestRouter(t)

	createUser(t, h, "carol")
	rec := doJSON(t, h, http.MethodPost, "/users",
		`{"email":"carol@example.com","login":"carol2","birthday":"1991-02-02"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestFriendsFlow(t *testing.T) {
	h := newTestRouter(t)

	alice := createUser(t, h, "alice")
	bob := createUser(t, h, "bob")

	// One-sided request: not a visible friendship yet.
	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", alice.ID, bob.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("add friend: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d/friends", alice.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list friends: status %d", rec.Code)
	}
	var friends []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &friends); err != nil {
		t.Fatalf("decode friends: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected no confirmed friends yet, got %d", len(friends))
	}

	// The reverse request confirms both directions.
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", bob.ID, alice.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("confirm friend: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d/friends", alice.ID), "")
	if err := json.Unmarshal(rec.Body.Bytes(), &friends); err != nil {
		t.Fatalf("decode friends: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != bob.ID {
		t.Fatalf("expected bob as confirmed friend, got %+v", friends)
	}

	// Breaking one side downgrades the other to a pending request.
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/users/%d/friends/%d", alice.ID, bob.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete friend: status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d/friends", bob.ID), "")
	if err := json.Unmarshal(rec.Body.Bytes(), &friends); err != nil {
		t.Fatalf("decode friends: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected friendship broken for bob, got %+v", friends)
	}
}

func TestCommonFriendsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	alice := createUser(t, h, "alice")
	bob := createUser(t, h, "bob")
	carol := createUser(t, h, "carol")

	confirm := func(a, b int64) {
		t.Helper()
		doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", a, b), "")
		doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", b, a), "")
	}
	confirm(alice.ID, carol.ID)
	confirm(bob.ID, carol.ID)

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d/friends/common/%d", alice.ID, bob.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("common friends: status %d", rec.Code)
	}
	var common []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &common); err != nil {
		t.Fatalf("decode common friends: %v", err)
	}
	if len(common) != 1 || common[0].ID != carol.ID {
		t.Fatalf("expected exactly carol in common, got %+v", common)
	}
}

func TestUsersUpdateAcceptsOwnRepresentation(t *testing.T) {
	h := newTestRouter(t)

	alice := createUser(t, h, "alice")
	bob := createUser(t, h, "bob")

	// Confirmed friendship so alice's representation carries friendsIds.
	doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", alice.ID, bob.ID), "")
	doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/%d", bob.ID, alice.ID), "")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get user: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"friendsIds"`) {
		t.Fatalf("expected friendsIds in representation, got %s", rec.Body.String())
	}

	// The exact JSON the API serves must be valid input for a full replace.
	rec = doJSON(t, h, http.MethodPut, "/users", rec.Body.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("put own representation: status %d, body %s", rec.Code, rec.Body.String())
	}

	var updated domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if updated.ID != alice.ID || updated.Login != "alice" {
		t.Fatalf("unexpected user after round trip: %+v", updated)
	}
}

func TestFriendsUnknownUserNotFound(t *testing.T) {
	h := newTestRouter(t)

	alice := createUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d/friends/999", alice.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
}
