package service

import (
	"context"

	"filmrate/internal/domain"
)

// ReferenceStore serves the closed genre and MPA rating reference sets.
type ReferenceStore interface {
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenreByID(ctx context.Context, id int) (domain.Genre, error)
	GenresByIDs(ctx context.Context, ids []int) ([]domain.Genre, error)
	ListMPA(ctx context.Context) ([]domain.MPARating, error)
	GetMPAByID(ctx context.Context, id int) (domain.MPARating, error)
}

type ReferenceService struct {
	Store ReferenceStore
}

func (s *ReferenceService) Genres(ctx context.Context) ([]domain.Genre, error) {
	return s.Store.ListGenres(ctx)
}

func (s *ReferenceService) Genre(ctx context.Context, id int) (domain.Genre, error) {
	return s.Store.GetGenreByID(ctx, id)
}

func (s *ReferenceService) MPAList(ctx context.Context) ([]domain.MPARating, error) {
	return s.Store.ListMPA(ctx)
}

func (s *ReferenceService) MPA(ctx context.Context, id int) (domain.MPARating, error) {
	return s.Store.GetMPAByID(ctx, id)
}
