package models

import (
	"time"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

type Review struct {
	ID         int64     `db:"id" json:"id"`
	BootcampID int64     `db:"bootcamp_id" json:"bootcamp"`
	UserID     int64     `db:"user_id" json:"user"`
	Title      string    `db:"title" json:"title"`
	Text       string    `db:"text" json:"text"`
	Rating     int       `db:"rating" json:"rating"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`

	BootcampName        *string `db:"bootcamp_name" json:"bootcampName,omitempty"`
	BootcampDescription *string `db:"bootcamp_description" json:"bootcampDescription,omitempty"`
}

func (r *Review) Validate() apperr.Fields {
	v := apperr.Fields{}
	if r.Title == "" {
		v.Add("title", "Please add a title for the review")
	} else if len(r.Title) > 100 {
		v.Add("title", "Title can not be more than 100 characters")
	}
	if r.Text == "" {
		v.Add("text", "Please add some text")
	}
	if r.Rating < 1 || r.Rating > 10 {
		v.Add("rating", "Please add a rating between 1 and 10")
	}
	return v
}
