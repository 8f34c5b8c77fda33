package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

// Careers a bootcamp may advertise.
var ValidCareers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// StringList is a []string stored as a jsonb column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

type Bootcamp struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	Website     string     `db:"website" json:"website,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	Email       string     `db:"email" json:"email,omitempty"`
	Address     string     `db:"address" json:"-"`
	Careers     StringList `db:"careers" json:"careers"`

	// Geocoded location. Nil until the address has been resolved.
	Latitude         *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude        *float64 `db:"longitude" json:"longitude,omitempty"`
	FormattedAddress *string  `db:"formatted_address" json:"formattedAddress,omitempty"`
	City             *string  `db:"city" json:"city,omitempty"`
	State            *string  `db:"state" json:"state,omitempty"`
	Zipcode          *string  `db:"zipcode" json:"zipcode,omitempty"`

	Housing       bool   `db:"housing" json:"housing"`
	JobAssistance bool   `db:"job_assistance" json:"jobAssistance"`
	JobGuarantee  bool   `db:"job_guarantee" json:"jobGuarantee"`
	AcceptGI      bool   `db:"accept_gi" json:"acceptGi"`
	Photo         string `db:"photo" json:"photo"`

	// Derived aggregates, absent until a related course/review exists.
	AverageCost   *int     `db:"average_cost" json:"averageCost,omitempty"`
	AverageRating *float64 `db:"average_rating" json:"averageRating,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Eagerly loaded courses for listings that ask for them. Not a column.
	Courses []Course `db:"-" json:"courses,omitempty"`
}

func (b *Bootcamp) Validate() apperr.Fields {
	v := apperr.Fields{}
	if b.Name == "" {
		v.Add("name", "Please add a name")
	} else if len(b.Name) > 50 {
		v.Add("name", "Name can not be more than 50 characters")
	}
	if b.Description == "" {
		v.Add("description", "Please add a description")
	} else if len(b.Description) > 500 {
		v.Add("description", "Description can not be more than 500 characters")
	}
	if b.Website != "" {
		if u, err := url.Parse(b.Website); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.Add("website", "Please use a valid URL with HTTP or HTTPS")
		}
	}
	if len(b.Phone) > 20 {
		v.Add("phone", "Phone number can not be longer than 20 characters")
	}
	if b.Email != "" && !emailRe.MatchString(b.Email) {
		v.Add("email", "Please add a valid email")
	}
	if b.Address == "" {
		v.Add("address", "Please add an address")
	}
	for _, c := range b.Careers {
		if !validCareer(c) {
			v.Add("careers", fmt.Sprintf("Career '%s' is not recognized", c))
			break
		}
	}
	return v
}

func validCareer(c string) bool {
	for _, valid := range ValidCareers {
		if c == valid {
			return true
		}
	}
	return false
}
