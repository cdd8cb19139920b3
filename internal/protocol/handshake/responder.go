package handshake

import (
	"crypto/rsa"
	"sync"

	"github.com/pkg/errors"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/util/memzero"
)

// session is the single handshake the responder tracks. Everything past
// phase is only meaningful for the phase it was written in.
type session struct {
	phase domain.Phase

	peerIdentity *rsa.PublicKey

	ephemeral        domain.DHPrivate
	peerEphemeral    domain.DHPublic
	peerEphemeralPEM []byte

	derivedKey []byte // lazily filled by Challenge
}

// Responder is the service side of the handshake. It owns exactly one
// session; a new identity exchange discards whatever came before, so two
// peers handshaking at once overwrite each other. All methods are safe for
// concurrent use and each runs atomically with respect to the others.
type Responder struct {
	mu      sync.Mutex
	session session

	identity    domain.Identity
	identityPEM []byte
	paramsPEM   []byte
	plaintext   []byte
}

// NewResponder builds a responder for id that delivers plaintext once a
// handshake completes.
func NewResponder(id domain.Identity, plaintext []byte) (*Responder, error) {
	if id.Key == nil {
		return nil, errors.New("responder requires an identity key")
	}
	identityPEM, err := crypto.MarshalRSAPublicPEM(&id.Key.PublicKey)
	if err != nil {
		return nil, err
	}
	paramsPEM, err := crypto.MarshalDHParamsPEM(id.Params)
	if err != nil {
		return nil, err
	}
	return &Responder{
		session:     session{phase: domain.PhaseInitialized},
		identity:    id,
		identityPEM: identityPEM,
		paramsPEM:   paramsPEM,
		plaintext:   append([]byte(nil), plaintext...),
	}, nil
}

// Phase returns the current handshake phase.
func (r *Responder) Phase() domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.phase
}

// ExchangeIdentity records the peer identity key and returns the service
// identity key and DH parameters, both PEM. It is valid in every phase and
// always restarts the handshake.
func (r *Responder) ExchangeIdentity(peerIdentityPEM []byte) (identityPEM, paramsPEM []byte, err error) {
	peer, err := crypto.ParseRSAPublicPEM(peerIdentityPEM)
	if err != nil {
		return nil, nil, &domain.MalformedKeyError{Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.discard()
	r.session = session{
		phase:        domain.PhaseIdentityExchanged,
		peerIdentity: peer,
	}
	return r.identityPEM, r.paramsPEM, nil
}

// ExchangeSignedKey verifies the peer's signature over
// params ‖ peerEphemeralPEM, then answers with a fresh service ephemeral key
// and a signature over params ‖ service ephemeral ‖ peer ephemeral.
func (r *Responder) ExchangeSignedKey(peerEphemeralPEM, signature []byte) (ephemeralPEM, sig []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.phase < domain.PhaseIdentityExchanged {
		return nil, nil, &domain.ProtocolStateError{
			Op:    "key exchange",
			Phase: r.session.phase,
			Want:  domain.PhaseIdentityExchanged,
		}
	}

	peerEphemeral, err := crypto.ParseDHPublicPEM(peerEphemeralPEM)
	if err != nil {
		return nil, nil, &domain.MalformedKeyError{Err: err}
	}
	if err := crypto.ValidateDHPublic(r.identity.Params, peerEphemeral); err != nil {
		return nil, nil, &domain.MalformedKeyError{Err: err}
	}

	transcript := peerTranscript(r.paramsPEM, peerEphemeralPEM)
	if err := crypto.VerifyPSS(r.session.peerIdentity, transcript, signature); err != nil {
		return nil, nil, &domain.SignatureVerificationError{Err: err}
	}

	ephemeral, err := crypto.GenerateDH(r.identity.Params)
	if err != nil {
		return nil, nil, &domain.CryptoOperationError{Op: "generate ephemeral key", Err: err}
	}
	ephemeralPEM, err = crypto.MarshalDHPublicPEM(ephemeral.Public())
	if err != nil {
		return nil, nil, &domain.CryptoOperationError{Op: "encode ephemeral key", Err: err}
	}
	sig, err = crypto.SignPSS(r.identity.Key, serviceTranscript(r.paramsPEM, ephemeralPEM, peerEphemeralPEM))
	if err != nil {
		return nil, nil, &domain.CryptoOperationError{Op: "sign ephemeral key", Err: err}
	}

	memzero.Zero(r.session.derivedKey)
	r.session.phase = domain.PhaseKeyExchanged
	r.session.ephemeral = ephemeral
	r.session.peerEphemeral = peerEphemeral
	r.session.peerEphemeralPEM = append([]byte(nil), peerEphemeralPEM...)
	r.session.derivedKey = nil
	return ephemeralPEM, sig, nil
}

// Challenge encrypts the configured plaintext under the derived key with a
// fresh IV. Ciphertexts are never reused between calls.
func (r *Responder) Challenge() (iv, ciphertext []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.phase != domain.PhaseKeyExchanged {
		return nil, nil, &domain.ProtocolStateError{
			Op:    "challenge",
			Phase: r.session.phase,
			Want:  domain.PhaseKeyExchanged,
		}
	}
	key, err := r.derivedKey()
	if err != nil {
		return nil, nil, err
	}
	iv, ciphertext, err = crypto.EncryptCBC(key, r.plaintext)
	if err != nil {
		return nil, nil, &domain.CryptoOperationError{Op: "encrypt challenge", Err: err}
	}
	return iv, ciphertext, nil
}

// derivedKey returns the cached session key, deriving it on first use.
// Caller holds r.mu and has checked the phase.
func (r *Responder) derivedKey() ([]byte, error) {
	if r.session.derivedKey != nil {
		return r.session.derivedKey, nil
	}
	shared, err := crypto.DH(r.session.ephemeral, r.session.peerEphemeral)
	if err != nil {
		return nil, &domain.CryptoOperationError{Op: "compute shared secret", Err: err}
	}
	defer memzero.Zero(shared)

	key, err := crypto.DeriveKey(shared)
	if err != nil {
		return nil, &domain.CryptoOperationError{Op: "derive key", Err: err}
	}
	r.session.derivedKey = key
	return key, nil
}

// discard wipes key material held by the current session.
func (r *Responder) discard() {
	memzero.Zero(r.session.derivedKey)
	r.session = session{phase: r.session.phase}
}
