package types

import "fmt"

// MalformedKeyError is returned when submitted key material cannot be parsed
// or does not fit the negotiated group.
type MalformedKeyError struct {
	Err error
}

func (e *MalformedKeyError) Error() string { return "malformed key: " + e.Err.Error() }
func (e *MalformedKeyError) Unwrap() error { return e.Err }

// SignatureVerificationError is returned when a peer signature does not
// validate against the peer identity key.
type SignatureVerificationError struct {
	Err error
}

func (e *SignatureVerificationError) Error() string {
	return "signature verification failed: " + e.Err.Error()
}
func (e *SignatureVerificationError) Unwrap() error { return e.Err }

// ProtocolStateError is returned when an operation runs before the handshake
// reached the phase it depends on.
type ProtocolStateError struct {
	Op    string
	Phase Phase
	Want  Phase
}

func (e *ProtocolStateError) Error() string {
	return fmt.Sprintf("%s requires phase %s, handshake is %s; restart from identity exchange",
		e.Op, e.Want, e.Phase)
}

// CryptoOperationError wraps an unexpected failure inside a primitive.
type CryptoOperationError struct {
	Op  string
	Err error
}

func (e *CryptoOperationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *CryptoOperationError) Unwrap() error { return e.Err }
