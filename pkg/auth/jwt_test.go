package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	iss := NewIssuer("test-secret")
	tok, err := iss.Generate("desktop", time.Minute)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "desktop", claims.Shell)
	assert.Equal(t, "desktop", claims.Subject)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("test-secret")

	expired, err := iss.Generate("desktop", -time.Minute)
	require.NoError(t, err)
	_, err = iss.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalid)

	other, err := NewIssuer("other-secret").Generate("desktop", time.Minute)
	require.NoError(t, err)
	_, err = iss.Parse(other)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = iss.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRandomIssuersDiffer(t *testing.T) {
	tok, err := NewIssuer("").Generate("desktop", time.Minute)
	require.NoError(t, err)
	_, err = NewIssuer("").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSecretHash(t *testing.T) {
	hash, err := HashSecret("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckSecret(hash, "hunter2"))
	assert.False(t, CheckSecret(hash, "hunter3"))
	assert.False(t, CheckSecret("", "hunter2"))
}
