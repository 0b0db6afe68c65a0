package memory

import (
	"context"
	"sort"
	"sync"

	"filmrate/internal/domain"
)

type FilmsStore struct {
	mu     sync.RWMutex
	films  map[int64]domain.Film
	likes  map[int64]map[int64]struct{}
	nextID int64
}

func NewFilmsStore() *FilmsStore {
	return &FilmsStore{
		films: make(map[int64]domain.Film),
		likes: make(map[int64]map[int64]struct{}),
	}
}

func (s *FilmsStore) CreateFilm(_ context.Context, film domain.Film) (domain.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	film.ID = s.nextID
	s.films[film.ID] = cloneFilm(film)

	return s.snapshot(film.ID), nil
}

func (s *FilmsStore) UpdateFilm(_ context.Context, film domain.Film) (domain.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.films[film.ID]; !ok {
		return domain.Film{}, domain.ErrNotFound
	}
	s.films[film.ID] = cloneFilm(film)

	return s.snapshot(film.ID), nil
}

func (s *FilmsStore) ListFilms(_ context.Context) ([]domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Film, 0, len(s.films))
	for _, id := range s.sortedIDs() {
		out = append(out, s.snapshot(id))
	}
	return out, nil
}

func (s *FilmsStore) GetFilmByID(_ context.Context, id int64) (domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.films[id]; !ok {
		return domain.Film{}, domain.ErrNotFound
	}
	return s.snapshot(id), nil
}

func (s *FilmsStore) FilmExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.films[id]
	return ok, nil
}

func (s *FilmsStore) FilmTitleTaken(_ context.Context, name string, releaseDate domain.Date, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, f := range s.films {
		if id != excludeID && f.Name == name && f.ReleaseDate.Equal(releaseDate.Time) {
			return true, nil
		}
	}
	return false, nil
}

// AddLike is idempotent: liking the same film twice keeps one like.
func (s *FilmsStore) AddLike(_ context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.likes[filmID]
	if !ok {
		set = make(map[int64]struct{})
		s.likes[filmID] = set
	}
	set[userID] = struct{}{}
	return nil
}

func (s *FilmsStore) DeleteLike(_ context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.likes[filmID], userID)
	return nil
}

func (s *FilmsStore) PopularFilms(_ context.Context, limit int) ([]domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		li, lj := len(s.likes[ids[i]]), len(s.likes[ids[j]])
		if li != lj {
			return li > lj
		}
		return ids[i] < ids[j]
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(ids) {
		limit = len(ids)
	}
	out := make([]domain.Film, 0, limit)
	for _, id := range ids[:limit] {
		out = append(out, s.snapshot(id))
	}
	return out, nil
}

func (s *FilmsStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.films))
	for id := range s.films {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// snapshot copies a stored film with its like count filled in. Callers
// must hold the lock.
func (s *FilmsStore) snapshot(id int64) domain.Film {
	f := cloneFilm(s.films[id])
	f.Likes = len(s.likes[id])
	return f
}

func cloneFilm(f domain.Film) domain.Film {
	if f.MPA != nil {
		mpa := *f.MPA
		f.MPA = &mpa
	}
	genres := make([]domain.Genre, len(f.Genres))
	copy(genres, f.Genres)
	f.Genres = genres
	return f
}
