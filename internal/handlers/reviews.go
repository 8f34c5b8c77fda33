package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/campdirectory/internal/aggregate"
	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/middleware"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
	"github.com/vaughan-dsouza/campdirectory/internal/query"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
)

type ReviewHandler struct {
	DB *sqlx.DB
}

const reviewSelect = `reviews.*, b.name AS bootcamp_name, b.description AS bootcamp_description`

var reviewQuery = query.Options{
	Table:      "reviews JOIN bootcamps b ON b.id = reviews.bootcamp_id",
	AllColumns: reviewSelect,
	Fields: map[string]string{
		"id":        "reviews.id",
		"bootcamp":  "reviews.bootcamp_id",
		"user":      "reviews.user_id",
		"title":     "reviews.title",
		"text":      "reviews.text",
		"rating":    "reviews.rating",
		"createdAt": "reviews.created_at",
	},
	DefaultSort: "reviews.created_at DESC, reviews.id DESC",
}

// GET /api/v1/reviews
// GET /api/v1/bootcamps/{bootcampID}/reviews
// GET /api/v1/users/{userID}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	for param, col := range map[string]string{"bootcampID": "bootcamp_id", "userID": "user_id"} {
		if chi.URLParam(r, param) == "" {
			continue
		}
		id, err := idParam(r, param)
		if err != nil {
			response.Error(w, err)
			return
		}
		var reviews []models.Review
		err = h.DB.SelectContext(r.Context(), &reviews,
			`SELECT * FROM reviews WHERE `+col+`=$1 ORDER BY created_at DESC, id DESC`, id)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.List(w, http.StatusOK, reviews, len(reviews), nil)
		return
	}

	reviews, pagination, err := query.Run[models.Review](r.Context(), h.DB, r.URL.Query(), reviewQuery)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, http.StatusOK, reviews, len(reviews), pagination)
}

// GET /api/v1/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var review models.Review
	err = h.DB.GetContext(r.Context(), &review,
		`SELECT `+reviewSelect+` FROM reviews JOIN bootcamps b ON b.id = reviews.bootcamp_id WHERE reviews.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("No review found with the id of %d", id))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, review)
}

type reviewBody struct {
	Title  *string `json:"title"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

func (b *reviewBody) apply(dst *models.Review) {
	if b.Title != nil {
		dst.Title = *b.Title
	}
	if b.Text != nil {
		dst.Text = *b.Text
	}
	if b.Rating != nil {
		dst.Rating = *b.Rating
	}
}

// POST /api/v1/bootcamps/{bootcampID}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	bootcampID, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}
	user := middleware.UserFrom(r.Context())

	var exists bool
	err = h.DB.GetContext(r.Context(), &exists,
		`SELECT EXISTS (SELECT 1 FROM bootcamps WHERE id=$1)`, bootcampID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if !exists {
		response.Error(w, apperr.NotFound("No bootcamp with the id of %d", bootcampID))
		return
	}

	var body reviewBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	review := models.Review{BootcampID: bootcampID, UserID: user.ID}
	body.apply(&review)
	if err := review.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}

	// The (bootcamp_id, user_id) unique index turns a second review by the
	// same user into a duplicate-key error, normalized to a 400.
	err = h.DB.QueryRowxContext(r.Context(), `
		INSERT INTO reviews (bootcamp_id, user_id, title, text, rating)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, review.BootcampID, review.UserID, review.Title, review.Text, review.Rating).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageRating(r.Context(), h.DB, review.BootcampID)

	response.JSON(w, http.StatusCreated, review)
}

// reviewAccess enforces owner-or-admin on a review write.
func reviewAccess(review *models.Review, user *models.User, action string) error {
	if review.UserID != user.ID && user.Role != models.RoleAdmin {
		return apperr.Forbidden("Not authorized to %s review %d", action, review.ID)
	}
	return nil
}

// fetchOwned loads a review and enforces owner-or-admin.
func (h *ReviewHandler) fetchOwned(r *http.Request, id int64, action string) (*models.Review, error) {
	var review models.Review
	err := h.DB.GetContext(r.Context(), &review, `SELECT * FROM reviews WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("No review found with the id of %d", id)
	}
	if err != nil {
		return nil, err
	}

	if err := reviewAccess(&review, middleware.UserFrom(r.Context()), action); err != nil {
		return nil, err
	}
	return &review, nil
}

// PUT /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	review, err := h.fetchOwned(r, id, "update")
	if err != nil {
		response.Error(w, err)
		return
	}

	var body reviewBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	body.apply(review)
	if err := review.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}

	_, err = h.DB.ExecContext(r.Context(),
		`UPDATE reviews SET title=$1, text=$2, rating=$3 WHERE id=$4`,
		review.Title, review.Text, review.Rating, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageRating(r.Context(), h.DB, review.BootcampID)

	response.JSON(w, http.StatusOK, review)
}

// DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	review, err := h.fetchOwned(r, id, "delete")
	if err != nil {
		response.Error(w, err)
		return
	}

	if _, err := h.DB.ExecContext(r.Context(), `DELETE FROM reviews WHERE id=$1`, id); err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageRating(r.Context(), h.DB, review.BootcampID)

	response.JSON(w, http.StatusOK, struct{}{})
}
