package types

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Phase is the position of the handshake session in its state machine.
type Phase int

const (
	// PhaseInitialized is the state after startup, before any exchange.
	PhaseInitialized Phase = iota
	// PhaseIdentityExchanged means a peer identity key is on file.
	PhaseIdentityExchanged
	// PhaseKeyExchanged means both ephemeral keys are known and a shared
	// secret can be derived.
	PhaseKeyExchanged
)

// String returns the phase name used in logs and the health endpoint.
func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseIdentityExchanged:
		return "identity-exchanged"
	case PhaseKeyExchanged:
		return "key-exchanged"
	default:
		return "unknown"
	}
}
