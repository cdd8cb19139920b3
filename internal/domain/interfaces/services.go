package interfaces

import domaintypes "secretchannel/internal/domain/types"

// IdentityService provisions the service identity at startup.
type IdentityService interface {
	ProvisionIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// HandshakeService runs the responder side of the authenticated DH exchange.
type HandshakeService interface {
	ExchangeIdentity(req domaintypes.IdentityRequest) (domaintypes.IdentityResponse, error)
	ExchangeSignedKey(req domaintypes.SignedKey) (domaintypes.SignedKey, error)
	Challenge() (domaintypes.Challenge, error)
	Phase() domaintypes.Phase
}
