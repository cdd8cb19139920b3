package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCBC_RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeyBytes)
	for _, n := range []int{0, 1, 15, 16, 17, 100} {
		pt := bytes.Repeat([]byte{'a'}, n)
		iv, ct, err := EncryptCBC(key, pt)
		require.NoError(t, err)
		assert.Len(t, iv, 16)
		assert.Equal(t, 0, len(ct)%16)
		assert.Greater(t, len(ct), n)

		got, err := DecryptCBC(key, iv, ct)
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}

func TestCBC_FreshIV(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, KeyBytes)
	iv1, ct1, err := EncryptCBC(key, []byte("same plaintext"))
	require.NoError(t, err)
	iv2, ct2, err := EncryptCBC(key, []byte("same plaintext"))
	require.NoError(t, err)
	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestCBC_WrongKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, KeyBytes)
	other := bytes.Repeat([]byte{0x02}, KeyBytes)
	iv, ct, err := EncryptCBC(key, []byte("secret"))
	require.NoError(t, err)

	pt, err := DecryptCBC(other, iv, ct)
	if err == nil {
		assert.NotEqual(t, []byte("secret"), pt)
	}
}

func TestPKCS7Unpad_Invalid(t *testing.T) {
	for _, b := range [][]byte{
		{},
		bytes.Repeat([]byte{0}, 16),
		append(bytes.Repeat([]byte{'x'}, 15), 17),
		append(bytes.Repeat([]byte{'x'}, 14), 3, 2),
	} {
		_, err := pkcs7Unpad(b, 16)
		assert.ErrorIs(t, err, ErrPadding)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	shared := bytes.Repeat([]byte{0x07}, 128)
	k1, err := DeriveKey(shared)
	require.NoError(t, err)
	k2, err := DeriveKey(shared)
	require.NoError(t, err)
	assert.Len(t, k1, KeyBytes)
	assert.Equal(t, k1, k2)

	shared[0] ^= 1
	k3, err := DeriveKey(shared)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}
