package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidate(t *testing.T) {
	valid := User{Name: "John Doe", Email: "john@example.com", Role: RoleUser}
	assert.True(t, valid.Validate("123456").Ok())

	tests := []struct {
		name     string
		user     User
		password string
		field    string
	}{
		{"missing name", User{Email: "a@b.co"}, "123456", "name"},
		{"missing email", User{Name: "x"}, "123456", "email"},
		{"bad email", User{Name: "x", Email: "not-an-email"}, "123456", "email"},
		{"short password", User{Name: "x", Email: "a@b.co"}, "12345", "password"},
		{"unknown role", User{Name: "x", Email: "a@b.co", Role: "root"}, "123456", "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.user.Validate(tt.password)
			assert.Contains(t, v, tt.field)
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("john@example.com"))
	assert.True(t, ValidEmail("j.doe+tag@sub.example.co"))
	assert.False(t, ValidEmail("john@"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail("john example.com"))
}

func validBootcamp() Bootcamp {
	return Bootcamp{
		Name:        "Devworks Bootcamp",
		Description: "Full stack web development",
		Website:     "https://devworks.com",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     StringList{"Web Development", "UI/UX"},
	}
}

func TestBootcampValidate(t *testing.T) {
	b := validBootcamp()
	assert.True(t, b.Validate().Ok())

	t.Run("name too long", func(t *testing.T) {
		b := validBootcamp()
		b.Name = strings.Repeat("x", 51)
		assert.Contains(t, b.Validate(), "name")
	})

	t.Run("description too long", func(t *testing.T) {
		b := validBootcamp()
		b.Description = strings.Repeat("x", 501)
		assert.Contains(t, b.Validate(), "description")
	})

	t.Run("bad website", func(t *testing.T) {
		b := validBootcamp()
		b.Website = "ftp://devworks.com"
		assert.Contains(t, b.Validate(), "website")
	})

	t.Run("missing address", func(t *testing.T) {
		b := validBootcamp()
		b.Address = ""
		assert.Contains(t, b.Validate(), "address")
	})

	t.Run("unknown career", func(t *testing.T) {
		b := validBootcamp()
		b.Careers = StringList{"Alchemy"}
		assert.Contains(t, b.Validate(), "careers")
	})

	t.Run("phone too long", func(t *testing.T) {
		b := validBootcamp()
		b.Phone = strings.Repeat("9", 21)
		assert.Contains(t, b.Validate(), "phone")
	})
}

func TestCourseValidate(t *testing.T) {
	valid := Course{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS, JavaScript",
		Weeks:        "8",
		Tuition:      8000,
		MinimumSkill: SkillBeginner,
	}
	assert.True(t, valid.Validate().Ok())

	invalid := Course{MinimumSkill: "wizard"}
	v := invalid.Validate()
	assert.Contains(t, v, "title")
	assert.Contains(t, v, "description")
	assert.Contains(t, v, "weeks")
	assert.Contains(t, v, "tuition")
	assert.Contains(t, v, "minimumSkill")
}

func TestReviewValidate(t *testing.T) {
	valid := Review{Title: "Great bootcamp", Text: "Learned a lot", Rating: 8}
	assert.True(t, valid.Validate().Ok())

	t.Run("rating bounds", func(t *testing.T) {
		for _, rating := range []int{0, 11, -1} {
			r := Review{Title: "t", Text: "x", Rating: rating}
			assert.Contains(t, r.Validate(), "rating", "rating %d", rating)
		}
		for _, rating := range []int{1, 10} {
			r := Review{Title: "t", Text: "x", Rating: rating}
			assert.True(t, r.Validate().Ok(), "rating %d", rating)
		}
	})

	t.Run("title too long", func(t *testing.T) {
		r := Review{Title: strings.Repeat("x", 101), Text: "x", Rating: 5}
		assert.Contains(t, r.Validate(), "title")
	})
}

func TestStringListScan(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan([]byte(`["Business","UI/UX"]`)))
	assert.Equal(t, StringList{"Business", "UI/UX"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)

	v, err := StringList{"Business"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["Business"]`, string(v.([]byte)))
}
