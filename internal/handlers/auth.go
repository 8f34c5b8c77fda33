package handlers

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/config"
	"github.com/vaughan-dsouza/campdirectory/internal/mailer"
	"github.com/vaughan-dsouza/campdirectory/internal/middleware"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
	"github.com/vaughan-dsouza/campdirectory/internal/token"
)

const resetTokenTTL = 10 * time.Minute

type AuthHandler struct {
	DB   *sqlx.DB
	Cfg  config.Config
	Mail mailer.Mailer
}

// sendTokenResponse issues a signed token and delivers it both as a cookie
// and in the response body.
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, status int, userID int64) {
	signed, err := token.Generate(userID, h.Cfg.JWTSecret, h.Cfg.JWTExpire)
	if err != nil {
		response.Error(w, fmt.Errorf("sign token: %w", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    signed,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(h.Cfg.JWTCookieExpire) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
	})

	response.Token(w, status, signed)
}

// hashResetToken is how reset tokens are stored: only the sha256 of the
// raw token ever touches the database.
func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
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
	if body.Role == models.RoleAdmin {
		response.Error(w, apperr.BadRequest("Role must be one of user, publisher"))
		return
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
		RETURNING id
	`, user.Name, user.Email, string(hash), user.Role).Scan(&user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusCreated, user.ID)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	if body.Email == "" || body.Password == "" {
		response.Error(w, apperr.BadRequest("Please provide an email and password"))
		return
	}

	var user models.User
	err := h.DB.GetContext(r.Context(), &user,
		`SELECT * FROM users WHERE email=$1`, body.Email)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.Unauthorized("Invalid credentials"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)) != nil {
		response.Error(w, apperr.Unauthorized("Invalid credentials"))
		return
	}

	h.sendTokenResponse(w, http.StatusOK, user.ID)
}

// GET /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	response.JSON(w, http.StatusOK, struct{}{})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	response.JSON(w, http.StatusOK, user)
}

// PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
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

	v := apperr.Fields{}
	if user.Name == "" {
		v.Add("name", "Please add a name")
	}
	if user.Email == "" || !models.ValidEmail(user.Email) {
		v.Add("email", "Please add a valid email")
	}
	if err := v.Err(); err != nil {
		response.Error(w, err)
		return
	}

	_, err := h.DB.ExecContext(r.Context(),
		`UPDATE users SET name=$1, email=$2 WHERE id=$3`, user.Name, user.Email, user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.CurrentPassword)) != nil {
		response.Error(w, apperr.Unauthorized("Password is incorrect"))
		return
	}
	if len(body.NewPassword) < 6 {
		response.Error(w, apperr.BadRequest("Please add a password with 6 or more characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, fmt.Errorf("hash password: %w", err))
		return
	}

	_, err = h.DB.ExecContext(r.Context(),
		`UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, user.ID)
}

// POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	var user models.User
	err := h.DB.GetContext(r.Context(), &user,
		`SELECT * FROM users WHERE email=$1`, body.Email)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("There is no user with that email"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	raw := uuid.NewString()
	hashed := hashResetToken(raw)
	expire := time.Now().Add(resetTokenTTL)

	_, err = h.DB.ExecContext(r.Context(), `
		UPDATE users SET reset_password_token=$1, reset_password_expire=$2 WHERE id=$3
	`, hashed, expire, user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	resetURL := fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, r.Host, raw)
	msg := fmt.Sprintf("You are receiving this email because you (or someone else) has requested "+
		"the reset of a password. Please make a PUT request to:\n\n%s", resetURL)

	if err := h.Mail.Send(user.Email, "Password reset token", msg); err != nil {
		// Roll the token back so a half-issued reset cannot linger.
		_, _ = h.DB.ExecContext(r.Context(),
			`UPDATE users SET reset_password_token=NULL, reset_password_expire=NULL WHERE id=$1`, user.ID)
		response.Error(w, apperr.New(http.StatusInternalServerError, "Email could not be sent"))
		return
	}

	response.JSON(w, http.StatusOK, "Email sent")
}

// PUT /api/v1/auth/resetpassword/{resettoken}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	hashed := hashResetToken(chi.URLParam(r, "resettoken"))

	var body struct {
		Password string `json:"password"`
	}
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	var user models.User
	err := h.DB.GetContext(r.Context(), &user, `
		SELECT * FROM users
		WHERE reset_password_token=$1 AND reset_password_expire > now()
	`, hashed)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.BadRequest("Invalid token"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	if len(body.Password) < 6 {
		response.Error(w, apperr.BadRequest("Please add a password with 6 or more characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, fmt.Errorf("hash password: %w", err))
		return
	}

	_, err = h.DB.ExecContext(r.Context(), `
		UPDATE users
		SET password_hash=$1, reset_password_token=NULL, reset_password_expire=NULL
		WHERE id=$2
	`, string(hash), user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, user.ID)
}
