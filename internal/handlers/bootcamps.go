package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/config"
	"github.com/vaughan-dsouza/campdirectory/internal/geocode"
	"github.com/vaughan-dsouza/campdirectory/internal/middleware"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
	"github.com/vaughan-dsouza/campdirectory/internal/query"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
)

// Earth's mean radius in miles, used for the radius search.
const earthRadiusMiles = 3963.0

type BootcampHandler struct {
	DB       *sqlx.DB
	Cfg      config.Config
	Geocoder geocode.Geocoder
}

var bootcampQuery = query.Options{
	Table: "bootcamps",
	Fields: map[string]string{
		"id":            "id",
		"user":          "user_id",
		"name":          "name",
		"slug":          "slug",
		"description":   "description",
		"website":       "website",
		"phone":         "phone",
		"email":         "email",
		"careers":       "careers",
		"city":          "city",
		"state":         "state",
		"zipcode":       "zipcode",
		"housing":       "housing",
		"jobAssistance": "job_assistance",
		"jobGuarantee":  "job_guarantee",
		"acceptGi":      "accept_gi",
		"photo":         "photo",
		"averageCost":   "average_cost",
		"averageRating": "average_rating",
		"createdAt":     "created_at",
	},
	ArrayFields: map[string]bool{"careers": true},
}

// GET /api/v1/bootcamps
func (h *BootcampHandler) List(w http.ResponseWriter, r *http.Request) {
	bootcamps, pagination, err := query.Run[models.Bootcamp](r.Context(), h.DB, r.URL.Query(), bootcampQuery)
	if err != nil {
		response.Error(w, err)
		return
	}

	if r.URL.Query().Get("include") == "courses" {
		if err := h.attachCourses(r, bootcamps); err != nil {
			response.Error(w, err)
			return
		}
	}

	response.List(w, http.StatusOK, bootcamps, len(bootcamps), pagination)
}

// attachCourses eagerly loads the courses of every listed bootcamp.
func (h *BootcampHandler) attachCourses(r *http.Request, bootcamps []models.Bootcamp) error {
	if len(bootcamps) == 0 {
		return nil
	}
	ids := make([]int64, len(bootcamps))
	for i, b := range bootcamps {
		ids[i] = b.ID
	}

	q, args, err := sqlx.In(`SELECT * FROM courses WHERE bootcamp_id IN (?) ORDER BY created_at DESC`, ids)
	if err != nil {
		return fmt.Errorf("bootcamps: include courses: %w", err)
	}

	var courses []models.Course
	if err := h.DB.SelectContext(r.Context(), &courses, h.DB.Rebind(q), args...); err != nil {
		return fmt.Errorf("bootcamps: include courses: %w", err)
	}

	byBootcamp := map[int64][]models.Course{}
	for _, c := range courses {
		byBootcamp[c.BootcampID] = append(byBootcamp[c.BootcampID], c)
	}
	for i := range bootcamps {
		bootcamps[i].Courses = byBootcamp[bootcamps[i].ID]
	}
	return nil
}

// GET /api/v1/bootcamps/{id}
func (h *BootcampHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}

	var bootcamp models.Bootcamp
	err = h.DB.GetContext(r.Context(), &bootcamp, `SELECT * FROM bootcamps WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(w, apperr.NotFound("Bootcamp not found with id of %d", id))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, bootcamp)
}

type bootcampBody struct {
	Name          *string            `json:"name"`
	Description   *string            `json:"description"`
	Website       *string            `json:"website"`
	Phone         *string            `json:"phone"`
	Email         *string            `json:"email"`
	Address       *string            `json:"address"`
	Careers       *models.StringList `json:"careers"`
	Housing       *bool              `json:"housing"`
	JobAssistance *bool              `json:"jobAssistance"`
	JobGuarantee  *bool              `json:"jobGuarantee"`
	AcceptGI      *bool              `json:"acceptGi"`
}

func (b *bootcampBody) apply(dst *models.Bootcamp) {
	if b.Name != nil {
		dst.Name = *b.Name
		dst.Slug = slug.Make(*b.Name)
	}
	if b.Description != nil {
		dst.Description = *b.Description
	}
	if b.Website != nil {
		dst.Website = *b.Website
	}
	if b.Phone != nil {
		dst.Phone = *b.Phone
	}
	if b.Email != nil {
		dst.Email = *b.Email
	}
	if b.Address != nil {
		dst.Address = *b.Address
	}
	if b.Careers != nil {
		dst.Careers = *b.Careers
	}
	if b.Housing != nil {
		dst.Housing = *b.Housing
	}
	if b.JobAssistance != nil {
		dst.JobAssistance = *b.JobAssistance
	}
	if b.JobGuarantee != nil {
		dst.JobGuarantee = *b.JobGuarantee
	}
	if b.AcceptGI != nil {
		dst.AcceptGI = *b.AcceptGI
	}
}

// geocodeInto resolves the bootcamp address and fills the location columns.
func (h *BootcampHandler) geocodeInto(r *http.Request, bootcamp *models.Bootcamp) error {
	loc, err := h.Geocoder.Geocode(r.Context(), bootcamp.Address)
	if err != nil {
		return err
	}
	bootcamp.Latitude = &loc.Latitude
	bootcamp.Longitude = &loc.Longitude
	bootcamp.FormattedAddress = &loc.FormattedAddress
	bootcamp.City = &loc.City
	bootcamp.State = &loc.State
	bootcamp.Zipcode = &loc.Zipcode
	return nil
}

// POST /api/v1/bootcamps
func (h *BootcampHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	// A publisher can only ever own one bootcamp.
	if user.Role != models.RoleAdmin {
		var count int
		err := h.DB.GetContext(r.Context(), &count,
			`SELECT COUNT(*) FROM bootcamps WHERE user_id=$1`, user.ID)
		if err != nil {
			response.Error(w, err)
			return
		}
		if count > 0 {
			response.Error(w, apperr.BadRequest("The user with ID %d has already published a bootcamp", user.ID))
			return
		}
	}

	var body bootcampBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}

	bootcamp := models.Bootcamp{UserID: user.ID, Photo: "no-photo.jpg", Careers: models.StringList{}}
	body.apply(&bootcamp)

	if err := bootcamp.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.geocodeInto(r, &bootcamp); err != nil {
		response.Error(w, err)
		return
	}

	err := h.DB.QueryRowxContext(r.Context(), `
		INSERT INTO bootcamps
			(user_id, name, slug, description, website, phone, email, address, careers,
			 latitude, longitude, formatted_address, city, state, zipcode,
			 housing, job_assistance, job_guarantee, accept_gi, photo)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id, created_at
	`, bootcamp.UserID, bootcamp.Name, bootcamp.Slug, bootcamp.Description, bootcamp.Website,
		bootcamp.Phone, bootcamp.Email, bootcamp.Address, bootcamp.Careers,
		bootcamp.Latitude, bootcamp.Longitude, bootcamp.FormattedAddress, bootcamp.City,
		bootcamp.State, bootcamp.Zipcode, bootcamp.Housing, bootcamp.JobAssistance,
		bootcamp.JobGuarantee, bootcamp.AcceptGI, bootcamp.Photo).
		Scan(&bootcamp.ID, &bootcamp.CreatedAt)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, bootcamp)
}

// fetchOwned loads a bootcamp and enforces that the requester owns it or
// is an admin.
func (h *BootcampHandler) fetchOwned(r *http.Request, id int64, action string) (*models.Bootcamp, error) {
	var bootcamp models.Bootcamp
	err := h.DB.GetContext(r.Context(), &bootcamp, `SELECT * FROM bootcamps WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Bootcamp not found with id of %d", id)
	}
	if err != nil {
		return nil, err
	}

	user := middleware.UserFrom(r.Context())
	if bootcamp.UserID != user.ID && user.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("User %d is not authorized to %s this bootcamp", user.ID, action)
	}
	return &bootcamp, nil
}

// PUT /api/v1/bootcamps/{id}
func (h *BootcampHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}

	bootcamp, err := h.fetchOwned(r, id, "update")
	if err != nil {
		response.Error(w, err)
		return
	}

	var body bootcampBody
	if err := response.DecodeJSON(r, &body); err != nil {
		response.Error(w, err)
		return
	}
	body.apply(bootcamp)

	if err := bootcamp.Validate().Err(); err != nil {
		response.Error(w, err)
		return
	}
	if body.Address != nil {
		if err := h.geocodeInto(r, bootcamp); err != nil {
			response.Error(w, err)
			return
		}
	}

	_, err = h.DB.ExecContext(r.Context(), `
		UPDATE bootcamps SET
			name=$1, slug=$2, description=$3, website=$4, phone=$5, email=$6,
			address=$7, careers=$8, latitude=$9, longitude=$10, formatted_address=$11,
			city=$12, state=$13, zipcode=$14, housing=$15, job_assistance=$16,
			job_guarantee=$17, accept_gi=$18
		WHERE id=$19
	`, bootcamp.Name, bootcamp.Slug, bootcamp.Description, bootcamp.Website, bootcamp.Phone,
		bootcamp.Email, bootcamp.Address, bootcamp.Careers, bootcamp.Latitude, bootcamp.Longitude,
		bootcamp.FormattedAddress, bootcamp.City, bootcamp.State, bootcamp.Zipcode,
		bootcamp.Housing, bootcamp.JobAssistance, bootcamp.JobGuarantee, bootcamp.AcceptGI, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, bootcamp)
}

// DELETE /api/v1/bootcamps/{id}
//
// Dependent courses and reviews go with the bootcamp, in one transaction,
// so the cascade is a visible part of the write path.
func (h *BootcampHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}

	if _, err := h.fetchOwned(r, id, "delete"); err != nil {
		response.Error(w, err)
		return
	}

	tx, err := h.DB.BeginTxx(r.Context(), nil)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM reviews WHERE bootcamp_id=$1`,
		`DELETE FROM courses WHERE bootcamp_id=$1`,
		`DELETE FROM bootcamps WHERE id=$1`,
	} {
		if _, err := tx.ExecContext(r.Context(), q, id); err != nil {
			response.Error(w, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, struct{}{})
}

// GET /api/v1/bootcamps/radius/{zipcode}/{distance}
func (h *BootcampHandler) InRadius(w http.ResponseWriter, r *http.Request) {
	zipcode := chi.URLParam(r, "zipcode")
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance <= 0 {
		response.Error(w, apperr.BadRequest("Please provide a positive distance in miles"))
		return
	}

	loc, err := h.Geocoder.Geocode(r.Context(), zipcode)
	if err != nil {
		response.Error(w, err)
		return
	}

	// Great-circle distance against the stored coordinates.
	var bootcamps []models.Bootcamp
	err = h.DB.SelectContext(r.Context(), &bootcamps, `
		SELECT * FROM bootcamps
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		  AND $4 * acos(
			least(1.0, greatest(-1.0,
				cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2))
				+ sin(radians($1)) * sin(radians(latitude))
			))
		  ) <= $3
	`, loc.Latitude, loc.Longitude, distance, earthRadiusMiles)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.List(w, http.StatusOK, bootcamps, len(bootcamps), nil)
}

// photoFilename names an uploaded photo after its bootcamp, keeping the
// original extension. Re-uploads overwrite the previous file.
func photoFilename(bootcampID int64, original string) string {
	return fmt.Sprintf("photo_%d%s", bootcampID, filepath.Ext(original))
}

// PUT /api/v1/bootcamps/{id}/photo
func (h *BootcampHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bootcampID")
	if err != nil {
		response.Error(w, err)
		return
	}

	bootcamp, err := h.fetchOwned(r, id, "update")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := r.ParseMultipartForm(h.Cfg.MaxFileUpload); err != nil {
		response.Error(w, apperr.BadRequest("Please upload a file"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apperr.BadRequest("Please upload a file"))
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		response.Error(w, apperr.BadRequest("Please upload an image file"))
		return
	}
	if header.Size > h.Cfg.MaxFileUpload {
		response.Error(w, apperr.BadRequest("Please upload an image less than %d bytes", h.Cfg.MaxFileUpload))
		return
	}

	filename := photoFilename(bootcamp.ID, header.Filename)

	if err := os.MkdirAll(h.Cfg.FileUploadPath, 0o755); err != nil {
		response.Error(w, fmt.Errorf("upload dir: %w", err))
		return
	}
	dst, err := os.Create(filepath.Join(h.Cfg.FileUploadPath, filename))
	if err != nil {
		response.Error(w, fmt.Errorf("create upload: %w", err))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		response.Error(w, fmt.Errorf("write upload: %w", err))
		return
	}

	_, err = h.DB.ExecContext(r.Context(),
		`UPDATE bootcamps SET photo=$1 WHERE id=$2`, filename, bootcamp.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, filename)
}
