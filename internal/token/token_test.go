package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	signed, err := Generate(42, "secret", "15m")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := Verify(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.SubjectID())
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := Generate(42, "secret", "15m")
	require.NoError(t, err)

	_, err = Verify(signed, "other-secret")
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	// A zero TTL expires immediately.
	signed, err := Generate(42, "secret", "0")
	require.NoError(t, err)

	_, err = Verify(signed, "secret")
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify("not-a-token", "secret")
	assert.Error(t, err)
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := Generate(42, "", "15m")
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"2h", 2 * time.Hour},
		{"20s", 20 * time.Second},
		{"30", 30 * time.Minute}, // bare number means minutes
		{"", 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTTL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseTTL("bogus")
	assert.Error(t, err)
}

func TestSubjectIDMalformed(t *testing.T) {
	c := &Claims{}
	c.Subject = "not-a-number"
	assert.Equal(t, int64(0), c.SubjectID())
}
