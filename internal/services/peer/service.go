package peer

import (
	"context"
	"crypto/rsa"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/protocol/handshake"
)

// Result is what a completed handshake yields.
type Result struct {
	// ServiceFingerprint matches the fingerprint the service logs at startup.
	ServiceFingerprint domain.Fingerprint
	Plaintext          []byte
}

// Service runs handshakes with a fixed identity key.
type Service struct {
	client domain.ChannelClient
	key    *rsa.PrivateKey
	log    logrus.FieldLogger
}

// New returns a peer that signs with key. A nil key means a fresh 2048-bit
// key is generated for every run.
func New(client domain.ChannelClient, key *rsa.PrivateKey, log logrus.FieldLogger) *Service {
	return &Service{client: client, key: key, log: log}
}

// Run performs all three rounds and decrypts the challenge.
func (s *Service) Run(ctx context.Context) (Result, error) {
	key := s.key
	if key == nil {
		var err error
		if key, err = crypto.GenerateRSA(2048); err != nil {
			return Result{}, errors.Wrap(err, "generate peer key")
		}
	}
	ini := handshake.NewInitiator(key)

	idPEM, err := ini.IdentityPEM()
	if err != nil {
		return Result{}, errors.Wrap(err, "encode identity")
	}
	idResp, err := s.client.ExchangeIdentity(ctx, domain.IdentityRequest{Key: string(idPEM)})
	if err != nil {
		return Result{}, errors.Wrap(err, "identity exchange")
	}
	if err := ini.AcceptIdentity([]byte(idResp.Key), []byte(idResp.DHParams)); err != nil {
		return Result{}, errors.Wrap(err, "identity exchange")
	}
	svcKey, err := crypto.ParseRSAPublicPEM([]byte(idResp.Key))
	if err != nil {
		return Result{}, errors.Wrap(err, "identity exchange")
	}
	fp := crypto.FingerprintRSA(svcKey)
	s.log.WithField("service_key", fp).Debug("identity exchanged")

	ephPEM, sig, err := ini.Offer()
	if err != nil {
		return Result{}, errors.Wrap(err, "key exchange")
	}
	skResp, err := s.client.ExchangeSignedKey(ctx, domain.SignedKey{
		Key:       string(ephPEM),
		Signature: crypto.B64(sig),
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "key exchange")
	}
	srvSig, err := crypto.FromB64(skResp.Signature)
	if err != nil {
		return Result{}, errors.Wrap(&domain.SignatureVerificationError{Err: err}, "key exchange")
	}
	if err := ini.Finish([]byte(skResp.Key), srvSig); err != nil {
		return Result{}, errors.Wrap(err, "key exchange")
	}
	s.log.Debug("session key derived")

	ch, err := s.client.FetchChallenge(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "challenge")
	}
	iv, err := crypto.FromB64(ch.IV)
	if err != nil {
		return Result{}, errors.Wrap(err, "decode challenge iv")
	}
	ct, err := crypto.FromB64(ch.Ciphertext)
	if err != nil {
		return Result{}, errors.Wrap(err, "decode challenge ciphertext")
	}
	pt, err := ini.OpenChallenge(iv, ct)
	if err != nil {
		return Result{}, errors.Wrap(err, "decrypt challenge")
	}
	return Result{ServiceFingerprint: fp, Plaintext: pt}, nil
}
