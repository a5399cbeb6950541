package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "cinedeck", TTL: time.Hour}
	tok, err := j.Issue(42, "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "42", c.Subject)
	assert.NotEmpty(t, c.ID)

	again, err := j.Issue(42, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, tok, again, "every token gets its own id")
}

func TestParse_Rejects(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "cinedeck", TTL: time.Minute}
	tok, err := j.Issue(1, "regular")
	require.NoError(t, err)

	_, err = (&JWTer{Secret: []byte("different"), Issuer: "cinedeck"}).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = (&JWTer{Secret: []byte("s3cret"), Issuer: "someone-else"}).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)

	later := &JWTer{Secret: []byte("s3cret"), Issuer: "cinedeck", Now: func() time.Time { return time.Now().Add(time.Hour) }}
	_, err = later.Parse(tok)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = (&JWTer{Issuer: "cinedeck"}).Issue(1, "regular")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "cinedeck", TTL: time.Minute}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UID: 1, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "cinedeck",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = j.Parse(none)
	assert.ErrorIs(t, err, ErrInvalid)
}
