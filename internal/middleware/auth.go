package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
	"github.com/vaughan-dsouza/campdirectory/internal/token"
)

// context key
type ctxKey string

const ctxUserKey ctxKey = "user"

// UserFrom returns the authenticated user attached by Protect, or nil if
// the route did not pass through it.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUserKey).(*models.User)
	return u
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

// extractToken pulls the bearer token from the Authorization header,
// falling back to the token cookie.
func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

// userLookupErr classifies a failed user lookup. A valid signature over a
// vanished user is a client problem, not an auth one; anything else is a
// server fault and passes through to the normalizer.
func userLookupErr(err error, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.BadRequest("No user found with id of %d", id)
	}
	return err
}

// Protect authenticates the request: token → claims → user row → context.
func Protect(db *sqlx.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractToken(r)
			if tok == "" {
				response.Error(w, apperr.Unauthorized("Not authorized to access this route"))
				return
			}

			claims, err := token.Verify(tok, secret)
			if err != nil {
				response.Error(w, apperr.Unauthorized("Not authorized to access this route"))
				return
			}

			var user models.User
			err = db.GetContext(r.Context(), &user,
				`SELECT * FROM users WHERE id=$1`, claims.SubjectID())
			if err != nil {
				response.Error(w, userLookupErr(err, claims.SubjectID()))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
		})
	}
}

// Authorize restricts a route to the given roles. Must run after Protect.
func Authorize(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := map[models.Role]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil {
				response.Error(w, apperr.Unauthorized("Not authorized to access this route"))
				return
			}
			if !allowed[user.Role] {
				response.Error(w, apperr.Forbidden("User role '%s' is not authorized to access this route", user.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
