package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec([]byte("topsecret"), "doclib", "doclib")

	tok, err := codec.Issue("alice/report.txt", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	key, err := codec.Verify(tok)
	assert.NoError(t, err)
	assert.Equal(t, "alice/report.txt", key)
}

func TestCodec_Expired(t *testing.T) {
	codec := NewCodec([]byte("topsecret"), "doclib", "doclib")

	tok, err := codec.Issue("alice/report.txt", -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_Invalid(t *testing.T) {
	codec := NewCodec([]byte("topsecret"), "doclib", "doclib")

	t.Run("malformed", func(t *testing.T) {
		_, err := codec.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewCodec([]byte("different"), "doclib", "doclib")
		tok, err := other.Issue("alice/report.txt", time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewCodec([]byte("topsecret"), "someone-else", "doclib")
		tok, err := other.Issue("alice/report.txt", time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewCodec([]byte("topsecret"), "doclib", "someone-else")
		tok, err := other.Issue("alice/report.txt", time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
