package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
)

// pssOptions signs with the largest salt the key allows and verifies any
// salt length.
var pssOptions = &rsa.PSSOptions{
	SaltLength: rsa.PSSSaltLengthAuto,
	Hash:       stdcrypto.SHA256,
}

// GenerateRSA returns a new RSA identity key with public exponent 65537.
func GenerateRSA(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "generate %d-bit rsa key", bits)
	}
	return key, nil
}

// MarshalRSAPublicPEM encodes pub as a SubjectPublicKeyInfo "PUBLIC KEY" block.
func MarshalRSAPublicPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, errors.Wrap(err, "encode rsa public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: der}), nil
}

// ParseRSAPublicPEM accepts "PUBLIC KEY" (SubjectPublicKeyInfo) and
// "RSA PUBLIC KEY" (PKCS#1) blocks. Keys of any other algorithm are rejected.
func ParseRSAPublicPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parse PKCS#1 public key")
		}
		return pub, nil
	case pemTypePublicKey:
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parse public key")
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.Errorf("expected an RSA public key, got %T", key)
		}
		return pub, nil
	default:
		return nil, errors.Errorf("unexpected PEM block %q", block.Type)
	}
}

// SignPSS signs the SHA-256 digest of msg with RSASSA-PSS (MGF1-SHA-256).
func SignPSS(key *rsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPSS(rand.Reader, key, stdcrypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, errors.Wrap(err, "rsa-pss sign")
	}
	return sig, nil
}

// VerifyPSS checks an RSASSA-PSS signature over the SHA-256 digest of msg.
func VerifyPSS(pub *rsa.PublicKey, msg, sig []byte) error {
	digest := sha256.Sum256(msg)
	return rsa.VerifyPSS(pub, stdcrypto.SHA256, digest[:], sig, pssOptions)
}
