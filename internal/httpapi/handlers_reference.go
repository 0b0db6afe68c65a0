package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"filmrate/internal/domain"
)

func (a *api) handleGenresList(w http.ResponseWriter, r *http.Request) {
	genres, err := a.referenceSvc.Genres(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, genres)
}

func (a *api) handleGenresGet(w http.ResponseWriter, r *http.Request) {
	id, err := refID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	genre, err := a.referenceSvc.Genre(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, genre)
}

func (a *api) handleMPAList(w http.ResponseWriter, r *http.Request) {
	ratings, err := a.referenceSvc.MPAList(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ratings)
}

func (a *api) handleMPAGet(w http.ResponseWriter, r *http.Request) {
	id, err := refID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	rating, err := a.referenceSvc.MPA(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rating)
}

func refID(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}
