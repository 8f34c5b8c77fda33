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

type CourseHandler struct {
	DB *sqlx.DB
}

// courseSelect joins in the bootcamp's name and description the way the
// source populated its bootcamp reference.
const courseSelect = `courses.*, b.name AS bootcamp_name, b.description AS bootcamp_description`

var courseQuery = query.Options{
	Table:      "courses JOIN bootcamps b ON b.id = courses.bootcamp_id",
	AllColumns: courseSelect,
	Fields: map[string]string{
		"id":                   "courses.id",
		"bootcamp":             "courses.bootcamp_id",
		"user":                 "courses.user_id",
		"title":                "courses.title",
		"description":          "courses.description",
		"weeks":                "courses.weeks",
		"tuition":              "courses.tuition",
		"minimumSkill":         "courses.minimum_skill",
		"scholarshipAvailable": "courses.scholarship_available",
		"createdAt":            "courses.created_at",
	},
	DefaultSort: "courses.created_at DESC, courses.id DESC",
}

// GET /api/v1/courses
// GET /api/v1/bootcamps/{bootcampID}/courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "bootcampID") != "" {
		bootcampID, err := idParam(r, "bootcampID")
		if err != nil {
			response.Error(w, err)
			return
		}
		var courses []models.Course
		err = h.DB.SelectContext(r.Context(), &courses,
			`SELECT * FROM courses WHERE bootcamp_id=$1 ORDER BY created_at DESC, id DESC`, bootcampID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.List(w, http.StatusOK, courses, len(courses), nil)
		return
	}

	courses, pagination, err := query.Run[models.Course](r.Context(), h.DB, r.URL.Query(), courseQuery)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, http.StatusOK, courses, len(courses), pagination)
}

// GET /api/v1/courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var course models.Course
	err = h.DB.GetContext(r.Context(), &course,
		`SELECT `+courseSelect+` FROM courses JOIN bootcamps b ON b.id = courses.bootcamp_id WHERE courses.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("No course with the id of %d", id))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, course)
}

type courseBody struct {
	Title                *string       `json:"title"`
	Description          *string       `json:"description"`
	Weeks                *string       `json:"weeks"`
	Tuition              *float64      `json:"tuition"`
	MinimumSkill         *models.Skill `json:"minimumSkill"`
	ScholarshipAvailable *bool         `json:"scholarshipAvailable"`
}

func (b *courseBody) apply(dst *models.Course) {
	if b.Title != nil {
		dst.Title = *b.Title
	}
	if b.Description != nil {
		dst.Description = *b.Description
	}
	if b.Weeks != nil {
		dst.Weeks = *b.Weeks
	}
	if b.Tuition != nil {
		dst.Tuition = *b.Tuition
	}
	if b.MinimumSkill != nil {
		dst.MinimumSkill = *b.MinimumSkill
	}
	if b.ScholarshipAvailable != nil {
		dst.ScholarshipAvailable = *b.ScholarshipAvailable
	}
}

// POST /api/v1/bootcamps/{bootcampID}/courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	bootcampID, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}
	user := middleware.UserFrom(r.Context())

	var bootcamp models.Bootcamp
	err = h.DB.GetContext(r.Context(), &bootcamp, `SELECT * FROM bootcamps WHERE id=$1`, bootcampID)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("No bootcamp with the id of %d", bootcampID))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}
	if bootcamp.UserID != user.ID && user.Role != models.RoleAdmin {
		response.Error(w, apperr.Forbidden("User %d is not authorized to add a course to bootcamp %d", user.ID, bootcampID))
		return
	}

	var body courseBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	course := models.Course{BootcampID: bootcampID, UserID: user.ID}
	body.apply(&course)
	if err := course.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}

	err = h.DB.QueryRowxContext(r.Context(), `
		INSERT INTO courses
			(bootcamp_id, user_id, title, description, weeks, tuition, minimum_skill, scholarship_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`, course.BootcampID, course.UserID, course.Title, course.Description, course.Weeks,
		course.Tuition, course.MinimumSkill, course.ScholarshipAvailable).
		Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageCost(r.Context(), h.DB, course.BootcampID)

	response.JSON(w, http.StatusCreated, course)
}

// fetchOwned loads a course and enforces owner-or-admin.
func (h *CourseHandler) fetchOwned(r *http.Request, id int64, action string) (*models.Course, error) {
	var course models.Course
	err := h.DB.GetContext(r.Context(), &course, `SELECT * FROM courses WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("No course with the id of %d", id)
	}
	if err != nil {
		return nil, err
	}

	user := middleware.UserFrom(r.Context())
	if course.UserID != user.ID && user.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("User %d is not authorized to %s course %d", user.ID, action, id)
	}
	return &course, nil
}

// PUT /api/v1/courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	course, err := h.fetchOwned(r, id, "update")
	if err != nil {
		response.Error(w, err)
		return
	}

	var body courseBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	body.apply(course)
	if err := course.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}

	_, err = h.DB.ExecContext(r.Context(), `
		UPDATE courses SET
			title=$1, description=$2, weeks=$3, tuition=$4, minimum_skill=$5, scholarship_available=$6
		WHERE id=$7
	`, course.Title, course.Description, course.Weeks, course.Tuition,
		course.MinimumSkill, course.ScholarshipAvailable, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageCost(r.Context(), h.DB, course.BootcampID)

	response.JSON(w, http.StatusOK, course)
}

// DELETE /api/v1/courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	course, err := h.fetchOwned(r, id, "delete")
	if err != nil {
		response.Error(w, err)
		return
	}

	if _, err := h.DB.ExecContext(r.Context(), `DELETE FROM courses WHERE id=$1`, id); err != nil {
		response.Error(w, err)
		return
	}

	aggregate.RecalcAverageCost(r.Context(), h.DB, course.BootcampID)

	response.JSON(w, http.StatusOK, struct{}{})
}
