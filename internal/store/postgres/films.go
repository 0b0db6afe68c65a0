package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"filmrate/internal/domain"
)

type FilmsStore struct {
	pool *pgxpool.Pool
}

func NewFilmsStore(pool *pgxpool.Pool) *FilmsStore {
	return &FilmsStore{pool: pool}
}

const filmColumns = `
	f.film_id,
	f.name,
	f.description,
	f.release_date,
	f.duration,
	rm.rating_mpa_id,
	rm.name AS rating_name,
	(SELECT COUNT(*) FROM likes l WHERE l.film_id = f.film_id) AS likes_count`

func (s *FilmsStore) CreateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	const q = `
		INSERT INTO films (name, description, release_date, duration, rating_mpa_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING film_id
	`

	var mpaID any
	if film.MPA != nil {
		mpaID = film.MPA.ID
	}
	err := s.pool.QueryRow(ctx, q, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, mpaID).Scan(&film.ID)
	if err != nil {
		return domain.Film{}, fmt.Errorf("create film: %w", err)
	}

	if err := s.insertGenres(ctx, film.ID, film.Genres); err != nil {
		return domain.Film{}, err
	}
	return s.GetFilmByID(ctx, film.ID)
}

func (s *FilmsStore) UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	const q = `
		UPDATE films
		SET name = $2, description = $3, release_date = $4, duration = $5, rating_mpa_id = $6
		WHERE film_id = $1
	`

	var mpaID any
	if film.MPA != nil {
		mpaID = film.MPA.ID
	}
	ct, err := s.pool.Exec(ctx, q, film.ID, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, mpaID)
	if err != nil {
		return domain.Film{}, fmt.Errorf("update film: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.Film{}, domain.ErrNotFound
	}

	// Full replace of the genre set.
	const clearGenres = `DELETE FROM film_genres WHERE film_id = $1`
	if _, err := s.pool.Exec(ctx, clearGenres, film.ID); err != nil {
		return domain.Film{}, fmt.Errorf("clear film genres: %w", err)
	}
	if err := s.insertGenres(ctx, film.ID, film.Genres); err != nil {
		return domain.Film{}, err
	}

	return s.GetFilmByID(ctx, film.ID)
}

func (s *FilmsStore) GetFilmByID(ctx context.Context, id int64) (domain.Film, error) {
	q := `
		SELECT` + filmColumns + `
		FROM films AS f
		LEFT JOIN rating_mpa AS rm ON f.rating_mpa_id = rm.rating_mpa_id
		WHERE f.film_id = $1
	`

	row := s.pool.QueryRow(ctx, q, id)
	film, err := scanFilm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Film{}, domain.ErrNotFound
		}
		return domain.Film{}, fmt.Errorf("get film by id: %w", err)
	}

	films := []domain.Film{film}
	if err := s.attachGenres(ctx, films); err != nil {
		return domain.Film{}, err
	}
	return films[0], nil
}

func (s *FilmsStore) ListFilms(ctx context.Context) ([]domain.Film, error) {
	q := `
		SELECT` + filmColumns + `
		FROM films AS f
		LEFT JOIN rating_mpa AS rm ON f.rating_mpa_id = rm.rating_mpa_id
		ORDER BY f.film_id
	`

	films, err := s.queryFilms(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	if err := s.attachGenres(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

func (s *FilmsStore) FilmExists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM films WHERE film_id = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("film exists: %w", err)
	}
	return exists, nil
}

func (s *FilmsStore) FilmTitleTaken(ctx context.Context, name string, releaseDate domain.Date, excludeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM films
			WHERE name = $1 AND release_date = $2 AND film_id <> $3
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, name, releaseDate.Time, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("film title taken: %w", err)
	}
	return exists, nil
}

func (s *FilmsStore) AddLike(ctx context.Context, filmID, userID int64) error {
	const q = `
		INSERT INTO likes (film_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (film_id, user_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, q, filmID, userID); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (s *FilmsStore) DeleteLike(ctx context.Context, filmID, userID int64) error {
	const q = `DELETE FROM likes WHERE film_id = $1 AND user_id = $2`
	if _, err := s.pool.Exec(ctx, q, filmID, userID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

// PopularFilms ranks by like count descending; ties break on ascending
// film id to keep the ordering deterministic.
func (s *FilmsStore) PopularFilms(ctx context.Context, limit int) ([]domain.Film, error) {
	q := `
		SELECT` + filmColumns + `
		FROM films AS f
		LEFT JOIN rating_mpa AS rm ON f.rating_mpa_id = rm.rating_mpa_id
		ORDER BY likes_count DESC, f.film_id ASC
		LIMIT $1
	`

	films, err := s.queryFilms(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("popular films: %w", err)
	}
	if err := s.attachGenres(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

func (s *FilmsStore) insertGenres(ctx context.Context, filmID int64, genres []domain.Genre) error {
	if len(genres) == 0 {
		return nil
	}

	const q = `
		INSERT INTO film_genres (film_id, genre_id)
		VALUES ($1, $2)
		ON CONFLICT (film_id, genre_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, g := range genres {
		batch.Queue(q, filmID, g.ID)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert film genres: %w", err)
	}
	return nil
}

// attachGenres fills the genre lists of the given films in one query.
func (s *FilmsStore) attachGenres(ctx context.Context, films []domain.Film) error {
	if len(films) == 0 {
		return nil
	}

	index := make(map[int64]int, len(films))
	ids := make([]int64, 0, len(films))
	for i := range films {
		films[i].Genres = []domain.Genre{}
		index[films[i].ID] = i
		ids = append(ids, films[i].ID)
	}

	const q = `
		SELECT fg.film_id, g.genre_id, g.name
		FROM film_genres AS fg
		JOIN genres AS g ON g.genre_id = fg.genre_id
		WHERE fg.film_id = ANY($1)
		ORDER BY fg.film_id, g.genre_id
	`

	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("load film genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			filmID int64
			genre  domain.Genre
		)
		if err := rows.Scan(&filmID, &genre.ID, &genre.Name); err != nil {
			return fmt.Errorf("scan film genre: %w", err)
		}
		if i, ok := index[filmID]; ok {
			films[i].Genres = append(films[i].Genres, genre)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load film genres: %w", err)
	}
	return nil
}

func (s *FilmsStore) queryFilms(ctx context.Context, q string, args ...any) ([]domain.Film, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films := []domain.Film{}
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}

func scanFilm(row pgx.Row) (domain.Film, error) {
	var (
		film        domain.Film
		releaseDate pgtype.Date
		mpaID       pgtype.Int4
		mpaName     pgtype.Text
	)
	err := row.Scan(
		&film.ID,
		&film.Name,
		&film.Description,
		&releaseDate,
		&film.Duration,
		&mpaID,
		&mpaName,
		&film.Likes,
	)
	if err != nil {
		return domain.Film{}, err
	}

	film.ReleaseDate = dateOrZero(releaseDate)
	if mpaID.Valid {
		film.MPA = &domain.MPARating{ID: int(mpaID.Int32), Name: mpaName.String}
	}
	return film, nil
}
