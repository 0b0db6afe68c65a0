package httpapi

import (
	"net/http"
	"strconv"

	"filmrate/internal/domain"
)

const defaultPopularCount = 10

type filmPayload struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description" validate:"max=200"`
	ReleaseDate domain.Date       `json:"releaseDate" validate:"-"`
	Duration    int               `json:"duration" validate:"required,gt=0"`
	MPA         *domain.MPARating `json:"mpa" validate:"-"`
	Genres      []domain.Genre    `json:"genres" validate:"-"`

	// Accepted so a film fetched from the API round-trips through PUT;
	// the count is derived from the likes table, never from the client.
	Likes int `json:"likes"`
}

func (p filmPayload) toDomain() domain.Film {
	return domain.Film{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ReleaseDate: p.ReleaseDate,
		Duration:    p.Duration,
		MPA:         p.MPA,
		Genres:      p.Genres,
	}
}

func (a *api) validateFilmPayload(p filmPayload) map[string]string {
	fields := a.validateStruct(p)
	if fields == nil {
		fields = map[string]string{}
	}

	if p.ReleaseDate.IsZero() {
		fields["releasedate"] = "required"
	} else if !p.ReleaseDate.After(domain.EarliestReleaseDate.Time) {
		fields["releasedate"] = "must be after " + domain.EarliestReleaseDate.String()
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (a *api) handleFilmsList(w http.ResponseWriter, r *http.Request) {
	films, err := a.filmsSvc.List(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, films)
}

func (a *api) handleFilmsCreate(w http.ResponseWriter, r *http.Request) {
	var req filmPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := a.validateFilmPayload(req); fields != nil {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	film, err := a.filmsSvc.Create(r.Context(), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, film)
}

func (a *api) handleFilmsUpdate(w http.ResponseWriter, r *http.Request) {
	var req filmPayload
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := a.validateFilmPayload(req); fields != nil {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	film, err := a.filmsSvc.Update(r.Context(), req.toDomain())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, film)
}

func (a *api) handleFilmsGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	film, err := a.filmsSvc.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, film)
}

func (a *api) handleLikeAdd(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := pathIDPair(r, "id", "userId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.filmsSvc.AddLike(r.Context(), filmID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleLikeDelete(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := pathIDPair(r, "id", "userId")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.filmsSvc.DeleteLike(r.Context(), filmID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFilmsPopular(w http.ResponseWriter, r *http.Request) {
	count := defaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"count": "must be an integer"}))
			return
		}
		count = n
	}

	films, err := a.filmsSvc.Popular(r.Context(), count)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, films)
}
