package handshake

import (
	"crypto/rsa"

	"github.com/pkg/errors"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/util/memzero"
)

// Current step of the initiator, to prevent out-of-order use.
type state uint8

const (
	created state = iota
	identified
	offered
	established
)

// Initiator is the peer side of the handshake. It is what a client uses to
// talk to a Responder and is not safe for concurrent use.
type Initiator struct {
	state state

	key *rsa.PrivateKey

	serviceIdentity *rsa.PublicKey
	params          domain.DHParams
	paramsPEM       []byte

	ephemeral    domain.DHPrivate
	ephemeralPEM []byte

	shared  []byte
	session []byte
}

// NewInitiator returns an initiator signing with key.
func NewInitiator(key *rsa.PrivateKey) *Initiator {
	return &Initiator{key: key}
}

// IdentityPEM returns the initiator's identity public key.
func (i *Initiator) IdentityPEM() ([]byte, error) {
	return crypto.MarshalRSAPublicPEM(&i.key.PublicKey)
}

// AcceptIdentity records the service identity key and DH parameters returned
// by the identity exchange. Calling it again restarts the handshake.
func (i *Initiator) AcceptIdentity(serviceIdentityPEM, paramsPEM []byte) error {
	pub, err := crypto.ParseRSAPublicPEM(serviceIdentityPEM)
	if err != nil {
		return &domain.MalformedKeyError{Err: err}
	}
	params, err := crypto.ParseDHParamsPEM(paramsPEM)
	if err != nil {
		return &domain.MalformedKeyError{Err: err}
	}
	i.wipe()
	i.serviceIdentity = pub
	i.params = params
	i.paramsPEM = append([]byte(nil), paramsPEM...)
	i.state = identified
	return nil
}

// Offer generates the initiator ephemeral key and signs params ‖ ephemeral.
func (i *Initiator) Offer() (ephemeralPEM, sig []byte, err error) {
	if i.state != identified {
		return nil, nil, errors.New("offer requires a completed identity exchange")
	}
	eph, err := crypto.GenerateDH(i.params)
	if err != nil {
		return nil, nil, err
	}
	ephemeralPEM, err = crypto.MarshalDHPublicPEM(eph.Public())
	if err != nil {
		return nil, nil, err
	}
	sig, err = crypto.SignPSS(i.key, peerTranscript(i.paramsPEM, ephemeralPEM))
	if err != nil {
		return nil, nil, err
	}
	i.ephemeral = eph
	i.ephemeralPEM = ephemeralPEM
	i.state = offered
	return ephemeralPEM, sig, nil
}

// Finish verifies the service's signed ephemeral key and derives the session
// key.
func (i *Initiator) Finish(serviceEphemeralPEM, sig []byte) error {
	if i.state != offered {
		return errors.New("finish requires an outstanding offer")
	}
	transcript := serviceTranscript(i.paramsPEM, serviceEphemeralPEM, i.ephemeralPEM)
	if err := crypto.VerifyPSS(i.serviceIdentity, transcript, sig); err != nil {
		return &domain.SignatureVerificationError{Err: err}
	}
	peer, err := crypto.ParseDHPublicPEM(serviceEphemeralPEM)
	if err != nil {
		return &domain.MalformedKeyError{Err: err}
	}
	shared, err := crypto.DH(i.ephemeral, peer)
	if err != nil {
		return &domain.MalformedKeyError{Err: err}
	}
	key, err := crypto.DeriveKey(shared)
	if err != nil {
		return err
	}
	i.shared = shared
	i.session = key
	i.state = established
	return nil
}

// SharedSecret returns the raw DH shared secret once established.
func (i *Initiator) SharedSecret() ([]byte, error) {
	if i.state != established {
		return nil, errors.New("handshake is not established")
	}
	return i.shared, nil
}

// SessionKey returns the derived 256-bit key once established.
func (i *Initiator) SessionKey() ([]byte, error) {
	if i.state != established {
		return nil, errors.New("handshake is not established")
	}
	return i.session, nil
}

// OpenChallenge decrypts a challenge returned by the service.
func (i *Initiator) OpenChallenge(iv, ciphertext []byte) ([]byte, error) {
	key, err := i.SessionKey()
	if err != nil {
		return nil, err
	}
	return crypto.DecryptCBC(key, iv, ciphertext)
}

func (i *Initiator) wipe() {
	memzero.Zero(i.shared)
	memzero.Zero(i.session)
	i.shared, i.session = nil, nil
	i.ephemeral = domain.DHPrivate{}
	i.ephemeralPEM = nil
}
