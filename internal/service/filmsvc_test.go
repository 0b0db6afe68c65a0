package service

import (
	"context"
	"errors"
	"testing"

	"filmrate/internal/domain"
)

type stubFilmsStore struct {
	t *testing.T

	createFilmFunc     func(context.Context, domain.Film) (domain.Film, error)
	updateFilmFunc     func(context.Context, domain.Film) (domain.Film, error)
	filmExistsFunc     func(context.Context, int64) (bool, error)
	filmTitleTakenFunc func(context.Context, string, domain.Date, int64) (bool, error)
	addLikeFunc        func(context.Context, int64, int64) error
	deleteLikeFunc     func(context.Context, int64, int64) error
	popularFilmsFunc   func(context.Context, int) ([]domain.Film, error)
}

func (s *stubFilmsStore) CreateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	if s.createFilmFunc != nil {
		return s.createFilmFunc(ctx, film)
	}
	s.t.Fatalf("CreateFilm called unexpectedly")
	return domain.Film{}, context.Canceled
}

func (s *stubFilmsStore) UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	if s.updateFilmFunc != nil {
		return s.updateFilmFunc(ctx, film)
	}
	s.t.Fatalf("UpdateFilm called unexpectedly")
	return domain.Film{}, context.Canceled
}

func (s *stubFilmsStore) ListFilms(ctx context.Context) ([]domain.Film, error) {
	return nil, nil
}

func (s *stubFilmsStore) GetFilmByID(ctx context.Context, id int64) (domain.Film, error) {
	return domain.Film{}, domain.ErrNotFound
}

func (s *stubFilmsStore) FilmExists(ctx context.Context, id int64) (bool, error) {
	if s.filmExistsFunc != nil {
		return s.filmExistsFunc(ctx, id)
	}
	s.t.Fatalf("FilmExists called unexpectedly")
	return false, context.Canceled
}

func (s *stubFilmsStore) FilmTitleTaken(ctx context.Context, name string, releaseDate domain.Date, excludeID int64) (bool, error) {
	if s.filmTitleTakenFunc != nil {
		return s.filmTitleTakenFunc(ctx, name, releaseDate, excludeID)
	}
	s.t.Fatalf("FilmTitleTaken called unexpectedly")
	return false, context.Canceled
}

func (s *stubFilmsStore) AddLike(ctx context.Context, filmID, userID int64) error {
	if s.addLikeFunc != nil {
		return s.addLikeFunc(ctx, filmID, userID)
	}
	s.t.Fatalf("AddLike called unexpectedly")
	return context.Canceled
}

func (s *stubFilmsStore) DeleteLike(ctx context.Context, filmID, userID int64) error {
	if s.deleteLikeFunc != nil {
		return s.deleteLikeFunc(ctx, filmID, userID)
	}
	s.t.Fatalf("DeleteLike called unexpectedly")
	return context.Canceled
}

func (s *stubFilmsStore) PopularFilms(ctx context.Context, limit int) ([]domain.Film, error) {
	if s.popularFilmsFunc != nil {
		return s.popularFilmsFunc(ctx, limit)
	}
	s.t.Fatalf("PopularFilms called unexpectedly")
	return nil, context.Canceled
}

type stubReferenceStore struct {
	genres map[int]string
	mpa    map[int]string
}

func (s *stubReferenceStore) ListGenres(context.Context) ([]domain.Genre, error) {
	return nil, nil
}

func (s *stubReferenceStore) GetGenreByID(_ context.Context, id int) (domain.Genre, error) {
	name, ok := s.genres[id]
	if !ok {
		return domain.Genre{}, domain.ErrNotFound
	}
	return domain.Genre{ID: id, Name: name}, nil
}

func (s *stubReferenceStore) GenresByIDs(_ context.Context, ids []int) ([]domain.Genre, error) {
	out := []domain.Genre{}
	for _, id := range ids {
		if name, ok := s.genres[id]; ok {
			out = append(out, domain.Genre{ID: id, Name: name})
		}
	}
	return out, nil
}

func (s *stubReferenceStore) ListMPA(context.Context) ([]domain.MPARating, error) {
	return nil, nil
}

func (s *stubReferenceStore) GetMPAByID(_ context.Context, id int) (domain.MPARating, error) {
	name, ok := s.mpa[id]
	if !ok {
		return domain.MPARating{}, domain.ErrNotFound
	}
	return domain.MPARating{ID: id, Name: name}, nil
}

type stubPopularCache struct {
	films       []domain.Film
	hit         bool
	setCalls    int
	invalidated int
}

func (c *stubPopularCache) Get(context.Context, int) ([]domain.Film, bool) {
	return c.films, c.hit
}

func (c *stubPopularCache) Set(_ context.Context, _ int, films []domain.Film) {
	c.setCalls++
	c.films = films
}

func (c *stubPopularCache) Invalidate(context.Context) {
	c.invalidated++
}

func newReference() *stubReferenceStore {
	return &stubReferenceStore{
		genres: map[int]string{1: "Comedy", 2: "Drama"},
		mpa:    map[int]string{1: "G", 4: "R"},
	}
}

func TestFilmsCreateRejectsDuplicateTitle(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		filmTitleTakenFunc: func(_ context.Context, name string, releaseDate domain.Date, excludeID int64) (bool, error) {
			if name != "Twin" || excludeID != 0 {
				t.Fatalf("unexpected title check: %s %d", name, excludeID)
			}
			return true, nil
		},
	}
	svc := &FilmsService{Films: store, Reference: newReference()}

	_, err := svc.Create(context.Background(), domain.Film{
		Name:        "Twin",
		ReleaseDate: domain.NewDate(2000, 1, 1),
		Duration:    100,
	})
	if !errors.Is(err, domain.ErrDuplicateData) {
		t.Fatalf("expected duplicate data error, got %v", err)
	}
}

func TestFilmsCreateBackfillsRatingName(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		filmTitleTakenFunc: func(context.Context, string, domain.Date, int64) (bool, error) {
			return false, nil
		},
		createFilmFunc: func(_ context.Context, film domain.Film) (domain.Film, error) {
			film.ID = 1
			return film, nil
		},
	}
	svc := &FilmsService{Films: store, Reference: newReference()}

	film, err := svc.Create(context.Background(), domain.Film{
		Name:        "Rated",
		ReleaseDate: domain.NewDate(2000, 1, 1),
		Duration:    100,
		MPA:         &domain.MPARating{ID: 4},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if film.MPA == nil || film.MPA.Name != "R" {
		t.Fatalf("expected rating name backfilled, got %+v", film.MPA)
	}
}

func TestFilmsCreateUnknownRating(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		filmTitleTakenFunc: func(context.Context, string, domain.Date, int64) (bool, error) {
			return false, nil
		},
	}
	svc := &FilmsService{Films: store, Reference: newReference()}

	_, err := svc.Create(context.Background(), domain.Film{
		Name:        "Unrated",
		ReleaseDate: domain.NewDate(2000, 1, 1),
		Duration:    100,
		MPA:         &domain.MPARating{ID: 99},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFilmsCreateUnknownGenre(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		filmTitleTakenFunc: func(context.Context, string, domain.Date, int64) (bool, error) {
			return false, nil
		},
	}
	svc := &FilmsService{Films: store, Reference: newReference()}

	_, err := svc.Create(context.Background(), domain.Film{
		Name:        "Tagged",
		ReleaseDate: domain.NewDate(2000, 1, 1),
		Duration:    100,
		Genres:      []domain.Genre{{ID: 1}, {ID: 42}},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFilmsCreateDeduplicatesGenres(t *testing.T) {
	var stored domain.Film
	store := &stubFilmsStore{
		t: t,
		filmTitleTakenFunc: func(context.Context, string, domain.Date, int64) (bool, error) {
			return false, nil
		},
		createFilmFunc: func(_ context.Context, film domain.Film) (domain.Film, error) {
			stored = film
			film.ID = 1
			return film, nil
		},
	}
	svc := &FilmsService{Films: store, Reference: newReference()}

	_, err := svc.Create(context.Background(), domain.Film{
		Name:        "Tagged",
		ReleaseDate: domain.NewDate(2000, 1, 1),
		Duration:    100,
		Genres:      []domain.Genre{{ID: 2}, {ID: 1}, {ID: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(stored.Genres) != 2 {
		t.Fatalf("expected genres deduplicated, got %+v", stored.Genres)
	}
	if stored.Genres[0].ID != 1 || stored.Genres[0].Name != "Comedy" {
		t.Fatalf("expected genres ordered by id with names, got %+v", stored.Genres)
	}
	if stored.Genres[1].ID != 2 || stored.Genres[1].Name != "Drama" {
		t.Fatalf("expected genres ordered by id with names, got %+v", stored.Genres)
	}
}

func TestAddLikeUnknownFilm(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		filmExistsFunc: func(context.Context, int64) (bool, error) {
			return false, nil
		},
	}
	svc := &FilmsService{Films: store, Users: &stubUsersStore{t: t}, Reference: newReference()}

	if err := svc.AddLike(context.Background(), 1, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddLikeUnknownUser(t *testing.T) {
	films := &stubFilmsStore{
		t: t,
		filmExistsFunc: func(context.Context, int64) (bool, error) {
			return true, nil
		},
	}
	users := &stubUsersStore{
		t: t,
		userExistsFunc: func(context.Context, int64) (bool, error) {
			return false, nil
		},
	}
	svc := &FilmsService{Films: films, Users: users, Reference: newReference()}

	if err := svc.AddLike(context.Background(), 1, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddLikeInvalidatesCache(t *testing.T) {
	films := &stubFilmsStore{
		t: t,
		filmExistsFunc: func(context.Context, int64) (bool, error) {
			return true, nil
		},
		addLikeFunc: func(context.Context, int64, int64) error {
			return nil
		},
	}
	users := &stubUsersStore{
		t: t,
		userExistsFunc: func(context.Context, int64) (bool, error) {
			return true, nil
		},
	}
	cache := &stubPopularCache{}
	svc := &FilmsService{Films: films, Users: users, Reference: newReference(), Cache: cache}

	if err := svc.AddLike(context.Background(), 1, 2); err != nil {
		t.Fatalf("AddLike: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected cache invalidated once, got %d", cache.invalidated)
	}
}

func TestPopularNonPositiveCountShortCircuits(t *testing.T) {
	svc := &FilmsService{Films: &stubFilmsStore{t: t}}

	films, err := svc.Popular(context.Background(), 0)
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(films) != 0 {
		t.Fatalf("expected empty result, got %d films", len(films))
	}
}

func TestPopularServedFromCache(t *testing.T) {
	cached := []domain.Film{{ID: 3, Name: "Cached", Likes: 5}}
	cache := &stubPopularCache{films: cached, hit: true}
	svc := &FilmsService{Films: &stubFilmsStore{t: t}, Cache: cache}

	films, err := svc.Popular(context.Background(), 2)
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(films) != 1 || films[0].ID != 3 {
		t.Fatalf("expected cached films, got %+v", films)
	}
}

func TestPopularFillsCacheOnMiss(t *testing.T) {
	store := &stubFilmsStore{
		t: t,
		popularFilmsFunc: func(_ context.Context, limit int) ([]domain.Film, error) {
			if limit != 2 {
				t.Fatalf("unexpected limit: %d", limit)
			}
			return []domain.Film{{ID: 1}, {ID: 2}}, nil
		},
	}
	cache := &stubPopularCache{}
	svc := &FilmsService{Films: store, Cache: cache}

	films, err := svc.Popular(context.Background(), 2)
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(films) != 2 {
		t.Fatalf("expected 2 films, got %d", len(films))
	}
	if cache.setCalls != 1 {
		t.Fatalf("expected cache set once, got %d", cache.setCalls)
	}
}
