package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "02215", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"lat": "42.3496",
			"lon": "-71.1003",
			"display_name": "Boston, Suffolk County, Massachusetts, 02215, United States",
			"address": {"city": "Boston", "state": "Massachusetts", "postcode": "02215"}
		}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	loc, err := c.Geocode(context.Background(), "02215")
	require.NoError(t, err)

	assert.InDelta(t, 42.3496, loc.Latitude, 1e-9)
	assert.InDelta(t, -71.1003, loc.Longitude, 1e-9)
	assert.Equal(t, "Boston", loc.City)
	assert.Equal(t, "Massachusetts", loc.State)
	assert.Equal(t, "02215", loc.Zipcode)
}

func TestGeocodeTownFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"2","display_name":"x","address":{"town":"Lowell"}}]`))
	}))
	defer srv.Close()

	loc, err := New(srv.URL, "").Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Lowell", loc.City)
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Geocode(context.Background(), "nowhere")
	require.Error(t, err)

	// An unresolvable address is the client's fault, not the server's.
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestGeocodeProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Geocode(context.Background(), "x")
	assert.Error(t, err)
}
