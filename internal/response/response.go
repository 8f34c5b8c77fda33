// Package response shapes every payload the API emits. All success and
// failure paths funnel through here so the envelope stays uniform:
// {success, data?, count?, pagination?, error?}.
package response

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
	Token      string `json:"token,omitempty"`
	Error      string `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// JSON writes a success envelope wrapping data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// List writes a success envelope for a collection, with count and the
// pagination block produced by the query builder.
func List(w http.ResponseWriter, status int, data any, count int, pagination any) {
	write(w, status, Envelope{Success: true, Data: data, Count: &count, Pagination: pagination})
}

// Token writes the login/register envelope: the signed token rides in the
// body alongside the cookie the handler has already set.
func Token(w http.ResponseWriter, status int, token string) {
	write(w, status, Envelope{Success: true, Token: token})
}

// Error is the single point translating failures into the error envelope.
// It logs server-side, then maps: apperr carries its own status, database
// sentinel errors get their conventional statuses, everything else is a 500.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "Server Error"

	var appErr *apperr.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		msg = appErr.Message
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		status = http.StatusBadRequest
		msg = "Duplicate field value entered"
	case errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
		msg = "Resource not found"
	}

	logrus.WithFields(logrus.Fields{"status": status}).Error(err)
	write(w, status, Envelope{Success: false, Error: msg})
}

// DecodeJSON parses the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.BadRequest("Empty request body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("Invalid JSON: %s", err.Error())
	}
	return nil
}
