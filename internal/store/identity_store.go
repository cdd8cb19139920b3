package store

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/util/memzero"
)

const idFilename = "identity.json.enc"

// identityRecord is the plaintext sealed inside the keystore blob.
type identityRecord struct {
	RSAPrivate []byte `json:"rsa_private_pkcs8"`
	DHParams   string `json:"dh_params"`
}

// IdentityFileStore persists the service identity to disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// Path returns the keystore file location.
func (s *IdentityFileStore) Path() string { return filepath.Join(s.dir, idFilename) }

// SaveIdentity writes the encrypted identity to disk.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	der, err := x509.MarshalPKCS8PrivateKey(id.Key)
	if err != nil {
		return errors.Wrap(err, "encode identity key")
	}
	defer memzero.Zero(der)
	params, err := crypto.MarshalDHParamsPEM(id.Params)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(identityRecord{RSAPrivate: der, DHParams: string(params)})
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	N, r, p := scryptParamsDefault()
	ct, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrapf(err, "create %s", s.dir)
	}
	return writeFile(s.Path(), ct, 0o600)
}

// LoadIdentity reads and decrypts the identity. A missing file yields
// ok=false and no error.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return domain.Identity{}, false, err
	}
	if b == nil {
		return domain.Identity{}, false, nil
	}
	pt, err := decrypt(passphrase, b)
	if err != nil {
		return domain.Identity{}, false, err
	}
	defer memzero.Zero(pt)

	var rec identityRecord
	if err := json.Unmarshal(pt, &rec); err != nil {
		return domain.Identity{}, false, errors.Wrap(err, "decode identity record")
	}
	defer memzero.Zero(rec.RSAPrivate)

	key, err := x509.ParsePKCS8PrivateKey(rec.RSAPrivate)
	if err != nil {
		return domain.Identity{}, false, errors.Wrap(err, "parse identity key")
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return domain.Identity{}, false, errors.Errorf("identity key is %T, want RSA", key)
	}
	params, err := crypto.ParseDHParamsPEM([]byte(rec.DHParams))
	if err != nil {
		return domain.Identity{}, false, err
	}
	return domain.Identity{Key: rsaKey, Params: params}, true, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
