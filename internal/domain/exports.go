package domain

import (
	interfaces "secretchannel/internal/domain/interfaces"
	types "secretchannel/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint      = types.Fingerprint
	Phase            = types.Phase
	DHParams         = types.DHParams
	DHPublic         = types.DHPublic
	DHPrivate        = types.DHPrivate
	Identity         = types.Identity
	IdentityRequest  = types.IdentityRequest
	IdentityResponse = types.IdentityResponse
	SignedKey        = types.SignedKey
	Challenge        = types.Challenge
	ErrorResponse    = types.ErrorResponse
	Health           = types.Health
)

// Handshake phases.
const (
	PhaseInitialized       = types.PhaseInitialized
	PhaseIdentityExchanged = types.PhaseIdentityExchanged
	PhaseKeyExchanged      = types.PhaseKeyExchanged
)

// Error taxonomy surfaced at the endpoint boundary.
type (
	MalformedKeyError          = types.MalformedKeyError
	SignatureVerificationError = types.SignatureVerificationError
	ProtocolStateError         = types.ProtocolStateError
	CryptoOperationError       = types.CryptoOperationError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService  = interfaces.IdentityService
	HandshakeService = interfaces.HandshakeService
	IdentityStore    = interfaces.IdentityStore
	ChannelClient    = interfaces.ChannelClient
)
