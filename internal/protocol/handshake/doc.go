// Package handshake implements the authenticated Diffie-Hellman exchange the
// secret channel service runs with a single peer at a time.
//
// # Overview
//
// Both sides hold a long-term RSA identity. The service also holds a
// generator-2 safe-prime DH group created at startup. Three rounds follow:
//
//  1. Identity exchange. The peer sends its RSA public key; the service
//     answers with its own RSA public key and the DH parameters (PKCS#3 PEM).
//  2. Signed key exchange. The peer sends an ephemeral DH public key and an
//     RSA-PSS/SHA-256 signature over params ‖ peer ephemeral. The service
//     verifies it, generates its own ephemeral key and returns it with a
//     signature over params ‖ service ephemeral ‖ peer ephemeral.
//  3. Challenge. The service derives a 256-bit key with HKDF-SHA256
//     (salt "ServerClient") from the DH shared secret and returns the
//     challenge text encrypted with AES-256-CBC under a fresh IV.
//
// All signed byte strings are the exact PEM texts exchanged on the wire.
//
// # State
//
// Responder phases advance Initialized → IdentityExchanged → KeyExchanged.
// Identity exchange is accepted in every phase and restarts the session,
// dropping ephemeral keys and the derived key. Key exchange before an
// identity exchange, or a challenge before a key exchange, fails with
// ProtocolStateError and changes nothing.
//
// # Errors
//
// MalformedKeyError for unparsable or out-of-group keys,
// SignatureVerificationError for bad signatures, ProtocolStateError for
// out-of-order calls and CryptoOperationError for primitive failures.
package handshake
