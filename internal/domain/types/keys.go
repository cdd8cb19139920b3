package types

import "math/big"

// DHParams are finite-field Diffie-Hellman domain parameters.
type DHParams struct {
	P *big.Int // safe-prime modulus
	G *big.Int // generator
}

// Equal reports whether both parameter sets describe the same group.
func (d DHParams) Equal(o DHParams) bool {
	if d.P == nil || d.G == nil || o.P == nil || o.G == nil {
		return false
	}
	return d.P.Cmp(o.P) == 0 && d.G.Cmp(o.G) == 0
}

// DHPublic is a Diffie-Hellman public value Y = G^X mod P.
type DHPublic struct {
	Params DHParams
	Y      *big.Int
}

// DHPrivate is an ephemeral Diffie-Hellman key pair.
type DHPrivate struct {
	DHPublic
	X *big.Int
}

// Public returns the public half of the key pair.
func (k DHPrivate) Public() DHPublic { return k.DHPublic }
