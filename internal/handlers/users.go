package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
	"github.com/vaughan-dsouza/campdirectory/internal/query"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
)

// UserHandler is the admin-only user administration surface. Routes using
// it are mounted behind Protect and Authorize(admin).
type UserHandler struct {
	DB *sqlx.DB
}

var userQuery = query.Options{
	Table: "users",
	Fields: map[string]string{
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"role":      "role",
		"createdAt": "created_at",
	},
}

// GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, pagination, err := query.Run[models.User](r.Context(), h.DB, r.URL.Query(), userQuery)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, http.StatusOK, users, len(users), pagination)
}

// GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		response.Error(w, err)
		return
	}

	var user models.User
	err = h.DB.GetContext(r.Context(), &user, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("No user found with id of %d", id))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	if body.Role == "" {
		body.Role = models.RoleUser
	}
	user := models.User{Name: body.Name, Email: body.Email, Role: body.Role}
	if err := user.Validate(body.Password).Err(); err != nil {
		response.Error(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, fmt.Errorf("hash password: %w", err))
		return
	}

	err = h.DB.QueryRowxContext(r.Context(), `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Name, user.Email, string(hash), user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, user)
}

// PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		response.Error(w, err)
		return
	}

	var user models.User
	err = h.DB.GetContext(r.Context(), &user, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("No user found with id of %d", id))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	var body struct {
		Name  *string      `json:"name"`
		Email *string      `json:"email"`
		Role  *models.Role `json:"role"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	if body.Name != nil {
		user.Name = *body.Name
	}
	if body.Email != nil {
		user.Email = *body.Email
	}
	if body.Role != nil {
		user.Role = *body.Role
	}

	v := apperr.Fields{}
	if user.Name == "" {
		v.Add("name", "Please add a name")
	}
	if user.Email == "" || !models.ValidEmail(user.Email) {
		v.Add("email", "Please add a valid email")
	}
	if !user.Role.Valid() {
		v.Add("role", "Role must be one of user, publisher, admin")
	}
	if err := v.Err(); err != nil {
		response.Error(w, err)
		return
	}

	_, err = h.DB.ExecContext(r.Context(),
		`UPDATE users SET name=$1, email=$2, role=$3 WHERE id=$4`,
		user.Name, user.Email, user.Role, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		response.Error(w, err)
		return
	}

	res, err := h.DB.ExecContext(r.Context(), `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		response.Error(w, apperr.NotFound("No user found with id of %d", id))
		return
	}

	response.JSON(w, http.StatusOK, struct{}{})
}
