package types

import "crypto/rsa"

// Identity is the service's long-lived key material: the RSA signing key and
// the DH group every handshake runs in.
type Identity struct {
	Key    *rsa.PrivateKey
	Params DHParams
}
