package identity

import (
	"fmt"
	"unicode"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)

	// ErrNoStore is returned by operations that need a persisted identity.
	ErrNoStore = errors.New("no identity store configured")
)

// Options sizes freshly generated identities.
type Options struct {
	RSABits          int
	DHBits           int
	GenerateDHParams bool
}

// Service provisions the service identity: the RSA signing key and the DH
// group. With a store and passphrase the identity survives restarts;
// otherwise a new one is generated each time.
type Service struct {
	store domain.IdentityStore
	opts  Options
	log   logrus.FieldLogger
}

// New returns an identity service. store may be nil.
func New(store domain.IdentityStore, opts Options, log logrus.FieldLogger) *Service {
	return &Service{store: store, opts: opts, log: log}
}

// ProvisionIdentity loads the persisted identity, or generates one and
// persists it when a store and passphrase are available.
func (s *Service) ProvisionIdentity(
	passphrase string,
) (domain.Identity, domain.Fingerprint, error) {
	persist := s.store != nil && passphrase != ""

	if persist {
		id, ok, err := s.store.LoadIdentity(passphrase)
		if err != nil {
			return domain.Identity{}, "", errors.Wrap(err, "load identity")
		}
		if ok {
			fp := crypto.FingerprintRSA(&id.Key.PublicKey)
			s.log.WithFields(logrus.Fields{
				"fingerprint": fp,
				"rsa_bits":    id.Key.N.BitLen(),
				"dh_bits":     id.Params.P.BitLen(),
			}).Info("loaded persisted identity")
			if id.Key.N.BitLen() != s.opts.RSABits || id.Params.P.BitLen() != s.opts.DHBits {
				s.log.Warn("persisted identity sizes differ from configuration; keeping persisted identity")
			}
			return id, fp, nil
		}
		if !isSecurePassphrase(passphrase) {
			return domain.Identity{}, "", ErrWeakPassphrase
		}
	}

	id, err := s.generate()
	if err != nil {
		return domain.Identity{}, "", err
	}
	fp := crypto.FingerprintRSA(&id.Key.PublicKey)

	if persist {
		if err := s.store.SaveIdentity(passphrase, id); err != nil {
			return domain.Identity{}, "", errors.Wrap(err, "save identity")
		}
	}
	s.log.WithFields(logrus.Fields{
		"fingerprint": fp,
		"persisted":   persist,
	}).Info("generated identity")
	return id, fp, nil
}

// FingerprintIdentity returns a short fingerprint of the persisted RSA
// identity key.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	if s.store == nil {
		return "", ErrNoStore
	}
	id, ok, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("no identity has been persisted yet")
	}
	return crypto.FingerprintRSA(&id.Key.PublicKey), nil
}

func (s *Service) generate() (domain.Identity, error) {
	s.log.WithFields(logrus.Fields{
		"rsa_bits": s.opts.RSABits,
		"dh_bits":  s.opts.DHBits,
		"fresh_dh": s.opts.GenerateDHParams,
	}).Info("generating identity key and dh parameters")

	key, err := crypto.GenerateRSA(s.opts.RSABits)
	if err != nil {
		return domain.Identity{}, &domain.CryptoOperationError{Op: "generate identity key", Err: err}
	}
	params, err := crypto.GenerateDHParams(s.opts.DHBits, s.opts.GenerateDHParams)
	if err != nil {
		return domain.Identity{}, &domain.CryptoOperationError{Op: "generate dh parameters", Err: err}
	}
	return domain.Identity{Key: key, Params: params}, nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
