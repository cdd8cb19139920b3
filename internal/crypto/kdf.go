package crypto

import (
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// KeyBytes is the size of the derived AES-256 key.
const KeyBytes = 32

// kdfSalt is the fixed, public HKDF salt label.
var kdfSalt = []byte("ServerClient")

// DeriveKey expands a DH shared secret into a 256-bit key with
// HKDF-SHA256, a fixed salt and no info.
func DeriveKey(shared []byte) ([]byte, error) {
	key := make([]byte, KeyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, kdfSalt, nil), key); err != nil {
		return nil, errors.Wrap(err, "hkdf expand")
	}
	return key, nil
}
