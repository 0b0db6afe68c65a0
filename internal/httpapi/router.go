package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"filmrate/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Films     *service.FilmsService
	Users     *service.UsersService
	Reference *service.ReferenceService
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		filmsSvc:     opts.Films,
		usersSvc:     opts.Users,
		referenceSvc: opts.Reference,
		validate:     newValidator(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", api.handleHealthz)

	mux.HandleFunc("GET /films", api.handleFilmsList)
	mux.HandleFunc("POST /films", api.handleFilmsCreate)
	mux.HandleFunc("PUT /films", api.handleFilmsUpdate)
	mux.HandleFunc("GET /films/popular", api.handleFilmsPopular)
	mux.HandleFunc("GET /films/{id}", api.handleFilmsGet)
	mux.HandleFunc("PUT /films/{id}/like/{userId}", api.handleLikeAdd)
	mux.HandleFunc("DELETE /films/{id}/like/{userId}", api.handleLikeDelete)

	mux.HandleFunc("GET /users", api.handleUsersList)
	mux.HandleFunc("POST /users", api.handleUsersCreate)
	mux.HandleFunc("PUT /users", api.handleUsersUpdate)
	mux.HandleFunc("GET /users/{id}", api.handleUsersGet)
	mux.HandleFunc("GET /users/{id}/friends", api.handleFriendsList)
	mux.HandleFunc("GET /users/{id}/friends/common/{otherId}", api.handleFriendsCommon)
	mux.HandleFunc("PUT /users/{id}/friends/{friendId}", api.handleFriendsAdd)
	mux.HandleFunc("DELETE /users/{id}/friends/{friendId}", api.handleFriendsDelete)

	mux.HandleFunc("GET /genres", api.handleGenresList)
	mux.HandleFunc("GET /genres/{id}", api.handleGenresGet)
	mux.HandleFunc("GET /mpa", api.handleMPAList)
	mux.HandleFunc("GET /mpa/{id}", api.handleMPAGet)

	var h http.Handler = mux
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	filmsSvc     *service.FilmsService
	usersSvc     *service.UsersService
	referenceSvc *service.ReferenceService

	validate *validator.Validate
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
