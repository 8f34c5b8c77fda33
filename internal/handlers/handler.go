package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/config"
	"github.com/vaughan-dsouza/campdirectory/internal/geocode"
	"github.com/vaughan-dsouza/campdirectory/internal/mailer"
)

type Handler struct {
	DB        *sqlx.DB
	Auth      *AuthHandler
	Bootcamps *BootcampHandler
	Courses   *CourseHandler
	Reviews   *ReviewHandler
	Users     *UserHandler
}

func New(db *sqlx.DB, cfg config.Config, geocoder geocode.Geocoder, mail mailer.Mailer) *Handler {
	return &Handler{
		DB:        db,
		Auth:      &AuthHandler{DB: db, Cfg: cfg, Mail: mail},
		Bootcamps: &BootcampHandler{DB: db, Cfg: cfg, Geocoder: geocoder},
		Courses:   &CourseHandler{DB: db},
		Reviews:   &ReviewHandler{DB: db},
		Users:     &UserHandler{DB: db},
	}
}

// idParam parses a URL id. A malformed id reads the same as a missing
// record to the client.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("Resource not found with id of %s", raw)
	}
	return id, nil
}
