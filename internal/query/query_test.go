package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Table: "bootcamps",
		Fields: map[string]string{
			"id":            "id",
			"name":          "name",
			"description":   "description",
			"careers":       "careers",
			"housing":       "housing",
			"averageCost":   "average_cost",
			"averageRating": "average_rating",
			"createdAt":     "created_at",
		},
		ArrayFields: map[string]bool{"careers": true},
	}
}

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestBuildDefaults(t *testing.T) {
	b, err := Build(url.Values{}, testOptions())
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM bootcamps ORDER BY created_at DESC, id DESC LIMIT 25 OFFSET 0",
		b.SelectSQL())
	assert.Equal(t, "SELECT COUNT(*) FROM bootcamps", b.CountSQL())
	assert.Empty(t, b.Args)
	assert.Equal(t, DefaultPage, b.Page)
	assert.Equal(t, DefaultLimit, b.Limit)
}

func TestBuildComparisonOperators(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		where string
		arg   any
	}{
		{"equality", "housing=true", "housing = $1", true},
		{"gt", "averageCost[gt]=5000", "average_cost > $1", int64(5000)},
		{"gte", "averageCost[gte]=5000", "average_cost >= $1", int64(5000)},
		{"lt", "averageRating[lt]=7.5", "average_rating < $1", 7.5},
		{"lte", "averageCost[lte]=10000", "average_cost <= $1", int64(10000)},
		{"string value", "name=Devworks", "name = $1", "Devworks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(mustParse(t, tt.raw), testOptions())
			require.NoError(t, err)

			assert.Equal(t, "SELECT COUNT(*) FROM bootcamps WHERE "+tt.where, b.CountSQL())
			require.Len(t, b.Args, 1)
			assert.Equal(t, tt.arg, b.Args[0])
		})
	}
}

func TestBuildInOperator(t *testing.T) {
	b, err := Build(mustParse(t, "averageCost[in]=5000,10000"), testOptions())
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM bootcamps WHERE average_cost IN ($1, $2)", b.CountSQL())
	assert.Equal(t, []any{"5000", "10000"}, b.Args)
}

func TestBuildArrayFieldMembership(t *testing.T) {
	b, err := Build(mustParse(t, "careers[in]=Business,UI/UX"), testOptions())
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM bootcamps WHERE EXISTS (SELECT 1 FROM jsonb_array_elements_text(careers) _e WHERE _e IN ($1, $2))",
		b.CountSQL())
	assert.Equal(t, []any{"Business", "UI/UX"}, b.Args)

	// Plain equality on an array field also tests membership.
	b, err = Build(mustParse(t, "careers=Business"), testOptions())
	require.NoError(t, err)
	assert.Contains(t, b.CountSQL(), "jsonb_array_elements_text(careers)")

	// Range operators make no sense on arrays.
	_, err = Build(mustParse(t, "careers[gte]=Business"), testOptions())
	assert.Error(t, err)
}

func TestBuildMultipleFiltersAreOrderedAndConjoined(t *testing.T) {
	b, err := Build(mustParse(t, "housing=true&averageCost[lte]=10000"), testOptions())
	require.NoError(t, err)

	// Sorted by param key: averageCost before housing.
	assert.Equal(t,
		"SELECT COUNT(*) FROM bootcamps WHERE average_cost <= $1 AND housing = $2",
		b.CountSQL())
	assert.Equal(t, []any{int64(10000), true}, b.Args)
}

func TestBuildRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown filter", "secret=1"},
		{"unknown operator", "name[like]=x"},
		{"unknown select", "select=name,password"},
		{"unknown sort", "sort=-password"},
		{"sql in key", "name%20drop=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(mustParse(t, tt.raw), testOptions())
			assert.Error(t, err)
		})
	}
}

func TestBuildSelect(t *testing.T) {
	b, err := Build(mustParse(t, "select=name,description"), testOptions())
	require.NoError(t, err)

	// id is always part of the projection.
	assert.Contains(t, b.SelectSQL(), "SELECT id, name, description FROM bootcamps")
}

func TestBuildSort(t *testing.T) {
	b, err := Build(mustParse(t, "sort=-createdAt,name"), testOptions())
	require.NoError(t, err)
	assert.Contains(t, b.SelectSQL(), "ORDER BY created_at DESC, name ASC")
}

func TestBuildPagination(t *testing.T) {
	b, err := Build(mustParse(t, "page=3&limit=10"), testOptions())
	require.NoError(t, err)
	assert.Contains(t, b.SelectSQL(), "LIMIT 10 OFFSET 20")

	// Bogus values fall back to defaults.
	b, err = Build(mustParse(t, "page=bogus&limit=-1"), testOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, b.Page)
	assert.Equal(t, DefaultLimit, b.Limit)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int
		wantNext *Page
		wantPrev *Page
	}{
		{"first of many", 1, 2, 3, &Page{Page: 2, Limit: 2}, nil},
		{"middle", 2, 2, 6, &Page{Page: 3, Limit: 2}, &Page{Page: 1, Limit: 2}},
		{"last", 3, 2, 6, nil, &Page{Page: 2, Limit: 2}},
		{"single page", 1, 25, 10, nil, nil},
		{"empty", 1, 25, 0, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Built{Page: tt.page, Limit: tt.limit}
			p := b.Paginate(tt.total)
			assert.Equal(t, tt.wantNext, p.Next)
			assert.Equal(t, tt.wantPrev, p.Prev)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(42), parseValue("42"))
	assert.Equal(t, 4.5, parseValue("4.5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "Devworks", parseValue("Devworks"))
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []any{"a", "b", "c"}, splitValues([]string{"a,b", "c"}))
	assert.Equal(t, []any{"a"}, splitValues([]string{" a , ", ""}))
}
