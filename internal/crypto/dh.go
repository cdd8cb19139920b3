package crypto

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"secretchannel/internal/domain"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// ErrInvalidDHPublic is returned for public values outside (1, p-1).
var ErrInvalidDHPublic = errors.New("dh public value out of range")

// GenerateDHParams returns generator-2 parameters with a modulus of exactly
// bits bits. Sizes with a registered Oakley/MODP group reuse it unless
// generate is set; anything else searches for a fresh safe prime, which is
// slow for large sizes.
func GenerateDHParams(bits int, generate bool) (domain.DHParams, error) {
	if bits < 64 {
		return domain.DHParams{}, errors.Errorf("dh modulus of %d bits is too small", bits)
	}
	if !generate {
		if p, ok := wellKnownGroup(bits); ok {
			return domain.DHParams{P: p, G: big.NewInt(2)}, nil
		}
	}
	p, err := safePrime(bits)
	if err != nil {
		return domain.DHParams{}, err
	}
	return domain.DHParams{P: p, G: big.NewInt(2)}, nil
}

// safePrime finds p = 2q+1 with p and q prime and p of exactly bits bits.
func safePrime(bits int) (*big.Int, error) {
	for {
		// rand.Prime sets the top two bits, so 2q+1 has exactly bits bits.
		q, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, errors.Wrap(err, "generate prime")
		}
		p := new(big.Int).Lsh(q, 1)
		p.Add(p, one)
		if p.BitLen() == bits && p.ProbablyPrime(20) {
			return p, nil
		}
	}
}

// GenerateDH returns a fresh ephemeral key pair in params.
func GenerateDH(params domain.DHParams) (domain.DHPrivate, error) {
	if params.P == nil || params.G == nil || params.P.Cmp(big.NewInt(5)) < 0 {
		return domain.DHPrivate{}, errors.New("dh parameters are not initialised")
	}
	// x in [2, p-2]
	limit := new(big.Int).Sub(params.P, big.NewInt(3))
	x, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return domain.DHPrivate{}, errors.Wrap(err, "generate dh exponent")
	}
	x.Add(x, two)
	y := new(big.Int).Exp(params.G, x, params.P)
	return domain.DHPrivate{
		DHPublic: domain.DHPublic{Params: params, Y: y},
		X:        x,
	}, nil
}

// ValidateDHPublic checks that pub belongs to params and 1 < y < p-1.
func ValidateDHPublic(params domain.DHParams, pub domain.DHPublic) error {
	if !params.Equal(pub.Params) {
		return errors.New("dh public key uses different group parameters")
	}
	if pub.Y == nil {
		return ErrInvalidDHPublic
	}
	pMinus1 := new(big.Int).Sub(params.P, one)
	if pub.Y.Cmp(one) <= 0 || pub.Y.Cmp(pMinus1) >= 0 {
		return ErrInvalidDHPublic
	}
	return nil
}

// DH computes the shared secret peer.Y^priv.X mod p, left-padded to the byte
// length of the modulus.
func DH(priv domain.DHPrivate, peer domain.DHPublic) ([]byte, error) {
	if err := ValidateDHPublic(priv.Params, peer); err != nil {
		return nil, err
	}
	z := new(big.Int).Exp(peer.Y, priv.X, priv.Params.P)
	out := make([]byte, (priv.Params.P.BitLen()+7)/8)
	return z.FillBytes(out), nil
}
