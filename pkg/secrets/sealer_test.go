package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer("passphrase")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("client-secret"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "client-secret")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "client-secret", string(plain))

	again, err := s.Seal([]byte("client-secret"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestSealer_WrongKeyOrTampered(t *testing.T) {
	a, _ := NewSealer("key-a")
	b, _ := NewSealer("key-b")

	sealed, err := a.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = a.Open("not base64!")
	assert.ErrorIs(t, err, ErrOpen)

	_, err = a.Open("")
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSealer_JSON(t *testing.T) {
	s, _ := NewSealer("k")

	type creds struct {
		ClientID string `json:"clientId"`
	}
	sealed, err := s.SealJSON(creds{ClientID: "abc"})
	require.NoError(t, err)

	var out creds
	require.NoError(t, s.OpenJSON(sealed, &out))
	assert.Equal(t, "abc", out.ClientID)
}

func TestNewSealer_EmptyPassphrase(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}
