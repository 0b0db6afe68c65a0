package memory

import (
	"context"

	"filmrate/internal/domain"
)

// ReferenceStore holds the seeded genre and MPA reference sets. The sets
// never change after construction, so reads need no locking.
type ReferenceStore struct {
	genres []domain.Genre
	mpa    []domain.MPARating
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		genres: []domain.Genre{
			{ID: 1, Name: "Comedy"},
			{ID: 2, Name: "Drama"},
			{ID: 3, Name: "Cartoon"},
			{ID: 4, Name: "Thriller"},
			{ID: 5, Name: "Documentary"},
			{ID: 6, Name: "Action"},
		},
		mpa: []domain.MPARating{
			{ID: 1, Name: "G"},
			{ID: 2, Name: "PG"},
			{ID: 3, Name: "PG-13"},
			{ID: 4, Name: "R"},
			{ID: 5, Name: "NC-17"},
		},
	}
}

func (s *ReferenceStore) ListGenres(_ context.Context) ([]domain.Genre, error) {
	out := make([]domain.Genre, len(s.genres))
	copy(out, s.genres)
	return out, nil
}

func (s *ReferenceStore) GetGenreByID(_ context.Context, id int) (domain.Genre, error) {
	for _, g := range s.genres {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.Genre{}, domain.ErrNotFound
}

func (s *ReferenceStore) GenresByIDs(_ context.Context, ids []int) ([]domain.Genre, error) {
	out := []domain.Genre{}
	for _, g := range s.genres {
		for _, id := range ids {
			if g.ID == id {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (s *ReferenceStore) ListMPA(_ context.Context) ([]domain.MPARating, error) {
	out := make([]domain.MPARating, len(s.mpa))
	copy(out, s.mpa)
	return out, nil
}

func (s *ReferenceStore) GetMPAByID(_ context.Context, id int) (domain.MPARating, error) {
	for _, r := range s.mpa {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.MPARating{}, domain.ErrNotFound
}
