package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"filmrate/internal/domain"
)

// ReferenceStore reads the genre and MPA rating reference tables. Both
// sets are closed: the service never writes them.
type ReferenceStore struct {
	pool *pgxpool.Pool
}

func NewReferenceStore(pool *pgxpool.Pool) *ReferenceStore {
	return &ReferenceStore{pool: pool}
}

func (s *ReferenceStore) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	const q = `SELECT genre_id, name FROM genres ORDER BY genre_id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	genres := []domain.Genre{}
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

func (s *ReferenceStore) GetGenreByID(ctx context.Context, id int) (domain.Genre, error) {
	const q = `SELECT genre_id, name FROM genres WHERE genre_id = $1`

	var g domain.Genre
	err := s.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Genre{}, domain.ErrNotFound
		}
		return domain.Genre{}, fmt.Errorf("get genre by id: %w", err)
	}
	return g, nil
}

func (s *ReferenceStore) GenresByIDs(ctx context.Context, ids []int) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return []domain.Genre{}, nil
	}

	const q = `SELECT genre_id, name FROM genres WHERE genre_id = ANY($1) ORDER BY genre_id`

	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("genres by ids: %w", err)
	}
	defer rows.Close()

	genres := []domain.Genre{}
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("genres by ids: %w", err)
	}
	return genres, nil
}

func (s *ReferenceStore) ListMPA(ctx context.Context) ([]domain.MPARating, error) {
	const q = `SELECT rating_mpa_id, name FROM rating_mpa ORDER BY rating_mpa_id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list mpa ratings: %w", err)
	}
	defer rows.Close()

	ratings := []domain.MPARating{}
	for rows.Next() {
		var r domain.MPARating
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan mpa rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mpa ratings: %w", err)
	}
	return ratings, nil
}

func (s *ReferenceStore) GetMPAByID(ctx context.Context, id int) (domain.MPARating, error) {
	const q = `SELECT rating_mpa_id, name FROM rating_mpa WHERE rating_mpa_id = $1`

	var r domain.MPARating
	err := s.pool.QueryRow(ctx, q, id).Scan(&r.ID, &r.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MPARating{}, domain.ErrNotFound
		}
		return domain.MPARating{}, fmt.Errorf("get mpa rating by id: %w", err)
	}
	return r, nil
}
