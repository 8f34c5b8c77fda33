package models

import (
	"time"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

func (s Skill) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID                   int64     `db:"id" json:"id"`
	BootcampID           int64     `db:"bootcamp_id" json:"bootcamp"`
	UserID               int64     `db:"user_id" json:"user"`
	Title                string    `db:"title" json:"title"`
	Description          string    `db:"description" json:"description"`
	Weeks                string    `db:"weeks" json:"weeks"`
	Tuition              float64   `db:"tuition" json:"tuition"`
	MinimumSkill         Skill     `db:"minimum_skill" json:"minimumSkill"`
	ScholarshipAvailable bool      `db:"scholarship_available" json:"scholarshipAvailable"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`

	// Populated on joined listings. Not columns.
	BootcampName        *string `db:"bootcamp_name" json:"bootcampName,omitempty"`
	BootcampDescription *string `db:"bootcamp_description" json:"bootcampDescription,omitempty"`
}

func (c *Course) Validate() apperr.Fields {
	v := apperr.Fields{}
	if c.Title == "" {
		v.Add("title", "Please add a course title")
	}
	if c.Description == "" {
		v.Add("description", "Please add a course description")
	}
	if c.Weeks == "" {
		v.Add("weeks", "Please add course duration in weeks")
	}
	if c.Tuition <= 0 {
		v.Add("tuition", "Please add a tuition cost")
	}
	if !c.MinimumSkill.Valid() {
		v.Add("minimumSkill", "Minimum skill must be one of beginner, intermediate, advanced")
	}
	return v
}
