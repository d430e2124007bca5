package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := DeriveStorageKey([]byte("installation-secret"))
	require.NoError(t, err)
	require.Len(t, key, 32)

	plaintext := []byte(`[{"id":"1","url":"/api/patients","method":"POST"}]`)

	sealed, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	require.NotEqual(t, string(plaintext), sealed)

	opened, err := Decrypt(sealed, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key1, err := DeriveStorageKey([]byte("secret-one"))
	require.NoError(t, err)
	key2, err := DeriveStorageKey([]byte("secret-two"))
	require.NoError(t, err)

	sealed, err := Encrypt([]byte("payload"), key1)
	require.NoError(t, err)

	_, err = Decrypt(sealed, key2)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDeriveStorageKeyDeterministic(t *testing.T) {
	a, err := DeriveStorageKey([]byte("same-secret"))
	require.NoError(t, err)
	b, err := DeriveStorageKey([]byte("same-secret"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDeriveStorageKeyEmptySecret(t *testing.T) {
	_, err := DeriveStorageKey(nil)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestDecryptGarbage(t *testing.T) {
	key, err := DeriveStorageKey([]byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt("not base64 !!!", key)
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = Decrypt("AAAA", key)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}
