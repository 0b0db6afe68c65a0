package domain

// User is a registered account. Name falls back to Login when left blank
// on create or update.
type User struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Login     string  `json:"login"`
	Name      string  `json:"name"`
	Birthday  Date    `json:"birthday"`
	FriendIDs []int64 `json:"friendsIds"`
}

// Film carries a denormalized like count and, when rated, the MPA rating
// with its display name filled in from the reference table.
type Film struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ReleaseDate Date       `json:"releaseDate"`
	Duration    int        `json:"duration"`
	Likes       int        `json:"likes"`
	MPA         *MPARating `json:"mpa,omitempty"`
	Genres      []Genre    `json:"genres"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MPARating struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// FriendshipStatus values match the status_id column of the friendship table.
type FriendshipStatus int

const (
	FriendshipConfirmed FriendshipStatus = 1
	FriendshipPending   FriendshipStatus = 2
)
