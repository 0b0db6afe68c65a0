package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"filmrate/internal/domain"
)

type FilmsStore interface {
	CreateFilm(ctx context.Context, film domain.Film) (domain.Film, error)
	UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error)
	ListFilms(ctx context.Context) ([]domain.Film, error)
	GetFilmByID(ctx context.Context, id int64) (domain.Film, error)
	FilmExists(ctx context.Context, id int64) (bool, error)
	FilmTitleTaken(ctx context.Context, name string, releaseDate domain.Date, excludeID int64) (bool, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	DeleteLike(ctx context.Context, filmID, userID int64) error
	PopularFilms(ctx context.Context, limit int) ([]domain.Film, error)
}

// PopularCache is an optional read-through cache for the popular-films
// ranking. A nil cache disables caching.
type PopularCache interface {
	Get(ctx context.Context, limit int) ([]domain.Film, bool)
	Set(ctx context.Context, limit int, films []domain.Film)
	Invalidate(ctx context.Context)
}

type FilmsService struct {
	Films     FilmsStore
	Users     UsersStore
	Reference ReferenceStore
	Cache     PopularCache
}

func (s *FilmsService) List(ctx context.Context) ([]domain.Film, error) {
	return s.Films.ListFilms(ctx)
}

func (s *FilmsService) Get(ctx context.Context, id int64) (domain.Film, error) {
	return s.Films.GetFilmByID(ctx, id)
}

func (s *FilmsService) Create(ctx context.Context, film domain.Film) (domain.Film, error) {
	taken, err := s.Films.FilmTitleTaken(ctx, film.Name, film.ReleaseDate, 0)
	if err != nil {
		return domain.Film{}, err
	}
	if taken {
		return domain.Film{}, domain.ErrDuplicateData
	}

	if err := s.resolveReferences(ctx, &film); err != nil {
		return domain.Film{}, err
	}

	created, err := s.Films.CreateFilm(ctx, film)
	if err != nil {
		return domain.Film{}, err
	}
	s.invalidatePopular(ctx)
	return created, nil
}

func (s *FilmsService) Update(ctx context.Context, film domain.Film) (domain.Film, error) {
	if film.ID == 0 {
		return domain.Film{}, domain.NewValidationError(map[string]string{"id": "required"})
	}

	exists, err := s.Films.FilmExists(ctx, film.ID)
	if err != nil {
		return domain.Film{}, err
	}
	if !exists {
		return domain.Film{}, domain.ErrNotFound
	}

	taken, err := s.Films.FilmTitleTaken(ctx, film.Name, film.ReleaseDate, film.ID)
	if err != nil {
		return domain.Film{}, err
	}
	if taken {
		return domain.Film{}, domain.ErrDuplicateData
	}

	if err := s.resolveReferences(ctx, &film); err != nil {
		return domain.Film{}, err
	}

	updated, err := s.Films.UpdateFilm(ctx, film)
	if err != nil {
		return domain.Film{}, err
	}
	s.invalidatePopular(ctx)
	return updated, nil
}

func (s *FilmsService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.Films.AddLike(ctx, filmID, userID); err != nil {
		return err
	}
	s.invalidatePopular(ctx)
	return nil
}

func (s *FilmsService) DeleteLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.Films.DeleteLike(ctx, filmID, userID); err != nil {
		return err
	}
	s.invalidatePopular(ctx)
	return nil
}

func (s *FilmsService) Popular(ctx context.Context, count int) ([]domain.Film, error) {
	if count <= 0 {
		return []domain.Film{}, nil
	}

	if s.Cache != nil {
		if films, ok := s.Cache.Get(ctx, count); ok {
			return films, nil
		}
	}

	films, err := s.Films.PopularFilms(ctx, count)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, count, films)
	}
	return films, nil
}

// resolveReferences verifies every referenced genre and rating id against
// the reference tables and backfills their display names.
func (s *FilmsService) resolveReferences(ctx context.Context, film *domain.Film) error {
	if film.MPA != nil {
		mpa, err := s.Reference.GetMPAByID(ctx, film.MPA.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError(map[string]string{
					"mpa": fmt.Sprintf("unknown rating id %d", film.MPA.ID),
				})
			}
			return err
		}
		film.MPA.Name = mpa.Name
	}

	if len(film.Genres) == 0 {
		return nil
	}

	ids := make([]int, 0, len(film.Genres))
	seen := make(map[int]bool, len(film.Genres))
	for _, g := range film.Genres {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		ids = append(ids, g.ID)
	}
	sort.Ints(ids)

	found, err := s.Reference.GenresByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return domain.NewValidationError(map[string]string{"genres": "unknown genre id"})
	}

	names := make(map[int]string, len(found))
	for _, g := range found {
		names[g.ID] = g.Name
	}

	// Deduplicated and ordered by genre id, matching how the relational
	// store reads the film_genres join back.
	genres := make([]domain.Genre, 0, len(ids))
	for _, id := range ids {
		genres = append(genres, domain.Genre{ID: id, Name: names[id]})
	}
	film.Genres = genres
	return nil
}

func (s *FilmsService) requireFilmAndUser(ctx context.Context, filmID, userID int64) error {
	exists, err := s.Films.FilmExists(ctx, filmID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	exists, err = s.Users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (s *FilmsService) invalidatePopular(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}
