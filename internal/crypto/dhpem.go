package crypto

import (
	encoding_asn1 "encoding/asn1"
	"encoding/pem"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"secretchannel/internal/domain"
)

const (
	pemTypeDHParams  = "DH PARAMETERS"
	pemTypePublicKey = "PUBLIC KEY"
)

// oidDHKeyAgreement is PKCS#3 dhKeyAgreement, the algorithm OpenSSL writes
// into SubjectPublicKeyInfo for plain DH keys.
var oidDHKeyAgreement = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 3, 1}

// MarshalDHParamsPEM encodes params as a PKCS#3 "DH PARAMETERS" PEM block.
func MarshalDHParamsPEM(params domain.DHParams) ([]byte, error) {
	var b cryptobyte.Builder
	addDHParams(&b, params)
	der, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "encode dh parameters")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypeDHParams, Bytes: der}), nil
}

// ParseDHParamsPEM decodes a PKCS#3 "DH PARAMETERS" PEM block.
func ParseDHParamsPEM(data []byte) (domain.DHParams, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return domain.DHParams{}, errors.New("no PEM block found")
	}
	if block.Type != pemTypeDHParams {
		return domain.DHParams{}, errors.Errorf("unexpected PEM block %q", block.Type)
	}
	input := cryptobyte.String(block.Bytes)
	params, ok := readDHParams(&input)
	if !ok || !input.Empty() {
		return domain.DHParams{}, errors.New("invalid PKCS#3 parameter encoding")
	}
	return params, nil
}

// MarshalDHPublicPEM encodes pub as a SubjectPublicKeyInfo "PUBLIC KEY" block.
func MarshalDHPublicPEM(pub domain.DHPublic) ([]byte, error) {
	var y cryptobyte.Builder
	y.AddASN1BigInt(pub.Y)
	yDER, err := y.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "encode dh public value")
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidDHKeyAgreement)
			addDHParams(b, pub.Params)
		})
		b.AddASN1BitString(yDER)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "encode dh public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: der}), nil
}

// ParseDHPublicPEM decodes a DH SubjectPublicKeyInfo "PUBLIC KEY" block.
func ParseDHPublicPEM(data []byte) (domain.DHPublic, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return domain.DHPublic{}, errors.New("no PEM block found")
	}
	if block.Type != pemTypePublicKey {
		return domain.DHPublic{}, errors.Errorf("unexpected PEM block %q", block.Type)
	}

	var (
		input = cryptobyte.String(block.Bytes)
		spki  cryptobyte.String
		algo  cryptobyte.String
		oid   encoding_asn1.ObjectIdentifier
		bits  []byte
	)
	if !input.ReadASN1(&spki, asn1.SEQUENCE) || !input.Empty() ||
		!spki.ReadASN1(&algo, asn1.SEQUENCE) ||
		!spki.ReadASN1BitStringAsBytes(&bits) || !spki.Empty() ||
		!algo.ReadASN1ObjectIdentifier(&oid) {
		return domain.DHPublic{}, errors.New("invalid SubjectPublicKeyInfo encoding")
	}
	if !oid.Equal(oidDHKeyAgreement) {
		return domain.DHPublic{}, errors.Errorf("unsupported key algorithm %s", oid)
	}
	params, ok := readDHParams(&algo)
	if !ok || !algo.Empty() {
		return domain.DHPublic{}, errors.New("invalid dh parameters in public key")
	}
	y := new(big.Int)
	yDER := cryptobyte.String(bits)
	if !yDER.ReadASN1Integer(y) || !yDER.Empty() {
		return domain.DHPublic{}, errors.New("invalid dh public value")
	}
	return domain.DHPublic{Params: params, Y: y}, nil
}

func addDHParams(b *cryptobyte.Builder, params domain.DHParams) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(params.P)
		b.AddASN1BigInt(params.G)
	})
}

// readDHParams reads SEQUENCE { p, g, privateValueLength OPTIONAL }.
func readDHParams(s *cryptobyte.String) (domain.DHParams, bool) {
	var seq cryptobyte.String
	p, g := new(big.Int), new(big.Int)
	if !s.ReadASN1(&seq, asn1.SEQUENCE) ||
		!seq.ReadASN1Integer(p) ||
		!seq.ReadASN1Integer(g) {
		return domain.DHParams{}, false
	}
	if !seq.Empty() {
		var l int64
		if !seq.ReadASN1Integer(&l) || !seq.Empty() {
			return domain.DHParams{}, false
		}
	}
	if p.Sign() <= 0 || g.Sign() <= 0 {
		return domain.DHParams{}, false
	}
	return domain.DHParams{P: p, G: g}, true
}
