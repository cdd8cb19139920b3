package channel

import (
	"errors"

	"github.com/sirupsen/logrus"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/metrics"
	"secretchannel/internal/protocol/handshake"
)

// Operation names used in logs and metrics.
const (
	OpExchangeIdentity  = "exchange_identity"
	OpExchangeSignedKey = "exchange_signed_key"
	OpChallenge         = "challenge"
)

// Plaintext builds the challenge payload: description, " - ", secret.
func Plaintext(text, flag string) []byte {
	return []byte(text + " - " + flag)
}

// Service is the HTTP-facing handshake service.
type Service struct {
	responder *handshake.Responder
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

// New wraps a responder for id that delivers plaintext.
func New(
	id domain.Identity,
	plaintext []byte,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) (*Service, error) {
	r, err := handshake.NewResponder(id, plaintext)
	if err != nil {
		return nil, err
	}
	m.Phase.Set(float64(r.Phase()))
	return &Service{responder: r, metrics: m, log: log}, nil
}

// ExchangeIdentity runs round one.
func (s *Service) ExchangeIdentity(req domain.IdentityRequest) (domain.IdentityResponse, error) {
	idPEM, paramsPEM, err := s.responder.ExchangeIdentity([]byte(req.Key))
	s.observe(OpExchangeIdentity, err, logrus.Fields{
		"peer_key": crypto.Fingerprint([]byte(req.Key)),
	})
	if err != nil {
		return domain.IdentityResponse{}, err
	}
	return domain.IdentityResponse{Key: string(idPEM), DHParams: string(paramsPEM)}, nil
}

// ExchangeSignedKey runs round two.
func (s *Service) ExchangeSignedKey(req domain.SignedKey) (domain.SignedKey, error) {
	// An undecodable signature still goes through the phase and key checks
	// first; it can only fail at verification.
	sig, decodeErr := crypto.FromB64(req.Signature)
	ephPEM, srvSig, err := s.responder.ExchangeSignedKey([]byte(req.Key), sig)
	var sigErr *domain.SignatureVerificationError
	if decodeErr != nil && errors.As(err, &sigErr) {
		err = &domain.SignatureVerificationError{Err: decodeErr}
	}
	s.observe(OpExchangeSignedKey, err, nil)
	if err != nil {
		return domain.SignedKey{}, err
	}
	return domain.SignedKey{Key: string(ephPEM), Signature: crypto.B64(srvSig)}, nil
}

// Challenge runs round three. Every call yields a new IV and ciphertext.
func (s *Service) Challenge() (domain.Challenge, error) {
	iv, ct, err := s.responder.Challenge()
	s.observe(OpChallenge, err, nil)
	if err != nil {
		return domain.Challenge{}, err
	}
	return domain.Challenge{IV: crypto.B64(iv), Ciphertext: crypto.B64(ct)}, nil
}

// Phase returns the responder's current phase.
func (s *Service) Phase() domain.Phase { return s.responder.Phase() }

func (s *Service) observe(op string, err error, fields logrus.Fields) {
	phase := s.responder.Phase()
	s.metrics.Observe(op, err, phase)

	entry := s.log.WithFields(fields).WithFields(logrus.Fields{
		"op":    op,
		"phase": phase.String(),
	})
	if err != nil {
		entry.WithError(err).Warn("handshake operation rejected")
		return
	}
	entry.Info("handshake operation completed")
}

// Compile-time assertion that Service implements domain.HandshakeService.
var _ domain.HandshakeService = (*Service)(nil)
