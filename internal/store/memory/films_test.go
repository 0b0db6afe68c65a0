package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmrate/internal/domain"
)

func seedFilms(t *testing.T, s *FilmsStore, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		f, err := s.CreateFilm(context.Background(), domain.Film{
			Name:        "Film " + string(rune('A'+i)),
			Description: "test film",
			ReleaseDate: domain.NewDate(2000+i, 6, 1),
			Duration:    90,
		})
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	return ids
}

func TestAddLikeIdempotent(t *testing.T) {
	s := NewFilmsStore()
	ids := seedFilms(t, s, 1)
	ctx := context.Background()

	require.NoError(t, s.AddLike(ctx, ids[0], 7))
	require.NoError(t, s.AddLike(ctx, ids[0], 7))

	f, err := s.GetFilmByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, f.Likes)
}

func TestDeleteLikeMissingIsNoOp(t *testing.T) {
	s := NewFilmsStore()
	ids := seedFilms(t, s, 1)
	ctx := context.Background()

	require.NoError(t, s.DeleteLike(ctx, ids[0], 7))

	f, err := s.GetFilmByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 0, f.Likes)
}

func TestPopularFilmsOrdering(t *testing.T) {
	s := NewFilmsStore()
	ids := seedFilms(t, s, 3)
	ctx := context.Background()

	// film 1 gets one like, film 2 two, film 3 three.
	for i, id := range ids {
		for u := int64(1); u <= int64(i)+1; u++ {
			require.NoError(t, s.AddLike(ctx, id, u))
		}
	}

	popular, err := s.PopularFilms(ctx, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, ids[2], popular[0].ID)
	assert.Equal(t, ids[1], popular[1].ID)
	assert.Equal(t, 3, popular[0].Likes)
	assert.Equal(t, 2, popular[1].Likes)
}

func TestPopularFilmsTieBreaksOnAscendingID(t *testing.T) {
	s := NewFilmsStore()
	ids := seedFilms(t, s, 3)
	ctx := context.Background()

	require.NoError(t, s.AddLike(ctx, ids[1], 1))
	require.NoError(t, s.AddLike(ctx, ids[2], 1))

	popular, err := s.PopularFilms(ctx, 3)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, []int64{ids[1], ids[2], ids[0]}, []int64{popular[0].ID, popular[1].ID, popular[2].ID})
}

func TestPopularFilmsLimitBeyondSize(t *testing.T) {
	s := NewFilmsStore()
	seedFilms(t, s, 2)

	popular, err := s.PopularFilms(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, popular, 2)
}

func TestPopularFilmsNegativeLimit(t *testing.T) {
	s := NewFilmsStore()
	seedFilms(t, s, 2)

	popular, err := s.PopularFilms(context.Background(), -1)
	require.NoError(t, err)
	assert.Empty(t, popular)
}

func TestFilmTitleTaken(t *testing.T) {
	s := NewFilmsStore()
	ctx := context.Background()

	created, err := s.CreateFilm(ctx, domain.Film{
		Name:        "Duplicate",
		ReleaseDate: domain.NewDate(2001, 3, 15),
		Duration:    100,
	})
	require.NoError(t, err)

	taken, err := s.FilmTitleTaken(ctx, "Duplicate", domain.NewDate(2001, 3, 15), 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// Same name, different date is a different film.
	taken, err = s.FilmTitleTaken(ctx, "Duplicate", domain.NewDate(2002, 3, 15), 0)
	require.NoError(t, err)
	assert.False(t, taken)

	// The film's own row is excluded on update.
	taken, err = s.FilmTitleTaken(ctx, "Duplicate", domain.NewDate(2001, 3, 15), created.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateFilmUnknownID(t *testing.T) {
	s := NewFilmsStore()

	_, err := s.UpdateFilm(context.Background(), domain.Film{
		ID:          42,
		Name:        "Ghost",
		ReleaseDate: domain.NewDate(2010, 1, 1),
		Duration:    80,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
