package handshake

import (
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
)

const plaintext = "Recover the flag - FLAG{dh-done-right}"

func newIdentity(t *testing.T) domain.Identity {
	t.Helper()
	key, err := crypto.GenerateRSA(1024)
	require.NoError(t, err)
	params, err := crypto.GenerateDHParams(1024, false)
	require.NoError(t, err)
	return domain.Identity{Key: key, Params: params}
}

func newResponder(t *testing.T) *Responder {
	t.Helper()
	r, err := NewResponder(newIdentity(t), []byte(plaintext))
	require.NoError(t, err)
	return r
}

func newInitiator(t *testing.T) *Initiator {
	t.Helper()
	key, err := crypto.GenerateRSA(1024)
	require.NoError(t, err)
	return NewInitiator(key)
}

// identify runs round one.
func identify(t *testing.T, r *Responder, i *Initiator) {
	t.Helper()
	pem, err := i.IdentityPEM()
	require.NoError(t, err)
	idPEM, paramsPEM, err := r.ExchangeIdentity(pem)
	require.NoError(t, err)
	require.NoError(t, i.AcceptIdentity(idPEM, paramsPEM))
}

// complete runs rounds one and two.
func complete(t *testing.T, r *Responder, i *Initiator) {
	t.Helper()
	identify(t, r, i)
	eph, sig, err := i.Offer()
	require.NoError(t, err)
	srvEph, srvSig, err := r.ExchangeSignedKey(eph, sig)
	require.NoError(t, err)
	require.NoError(t, i.Finish(srvEph, srvSig))
}

func TestHandshake_FullRoundTrip(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	assert.Equal(t, domain.PhaseInitialized, r.Phase())

	identify(t, r, i)
	assert.Equal(t, domain.PhaseIdentityExchanged, r.Phase())

	eph, sig, err := i.Offer()
	require.NoError(t, err)
	srvEph, srvSig, err := r.ExchangeSignedKey(eph, sig)
	require.NoError(t, err)
	require.NoError(t, i.Finish(srvEph, srvSig))
	assert.Equal(t, domain.PhaseKeyExchanged, r.Phase())

	peerShared, err := i.SharedSecret()
	require.NoError(t, err)
	serviceShared, err := crypto.DH(r.session.ephemeral, r.session.peerEphemeral)
	require.NoError(t, err)
	assert.Equal(t, serviceShared, peerShared)

	iv, ct, err := r.Challenge()
	require.NoError(t, err)
	got, err := i.OpenChallenge(iv, ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(got))

	key, err := i.SessionKey()
	require.NoError(t, err)
	assert.Equal(t, key, r.session.derivedKey)
}

func TestExchangeIdentity_ReturnsFixedServiceKey(t *testing.T) {
	r := newResponder(t)

	var first *rsa.PublicKey
	for n := 0; n < 3; n++ {
		i := newInitiator(t)
		pem, err := i.IdentityPEM()
		require.NoError(t, err)
		idPEM, paramsPEM, err := r.ExchangeIdentity(pem)
		require.NoError(t, err)

		pub, err := crypto.ParseRSAPublicPEM(idPEM)
		require.NoError(t, err)
		assert.True(t, r.identity.Key.PublicKey.Equal(pub))
		if first != nil {
			assert.True(t, first.Equal(pub))
		}
		first = pub

		params, err := crypto.ParseDHParamsPEM(paramsPEM)
		require.NoError(t, err)
		assert.True(t, r.identity.Params.Equal(params))
	}
}

func TestExchangeIdentity_MalformedKeyLeavesState(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	complete(t, r, i)

	_, _, err := r.ExchangeIdentity([]byte("-----BEGIN PUBLIC KEY-----\nbm9wZQ==\n-----END PUBLIC KEY-----\n"))
	var malformed *domain.MalformedKeyError
	require.ErrorAs(t, err, &malformed)

	assert.Equal(t, domain.PhaseKeyExchanged, r.Phase())
	iv, ct, err := r.Challenge()
	require.NoError(t, err)
	got, err := i.OpenChallenge(iv, ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(got))
}

func TestExchangeIdentity_RejectsNonRSAKey(t *testing.T) {
	r := newResponder(t)
	eph, err := crypto.GenerateDH(r.identity.Params)
	require.NoError(t, err)
	pem, err := crypto.MarshalDHPublicPEM(eph.Public())
	require.NoError(t, err)

	_, _, err = r.ExchangeIdentity(pem)
	var malformed *domain.MalformedKeyError
	assert.ErrorAs(t, err, &malformed)
	assert.Equal(t, domain.PhaseInitialized, r.Phase())
}

func TestExchangeSignedKey_TamperedPayload(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	identify(t, r, i)

	eph, _, err := i.Offer()
	require.NoError(t, err)

	// Sign a transcript that differs from the transmitted one in one byte.
	for _, pos := range []int{0, len(r.paramsPEM) / 2, len(r.paramsPEM) + len(eph)/2} {
		payload := peerTranscript(r.paramsPEM, eph)
		payload[pos] ^= 0x01
		sig, err := crypto.SignPSS(i.key, payload)
		require.NoError(t, err)

		_, _, err = r.ExchangeSignedKey(eph, sig)
		var sigErr *domain.SignatureVerificationError
		require.ErrorAs(t, err, &sigErr, "pos %d", pos)
		assert.Equal(t, domain.PhaseIdentityExchanged, r.Phase())
	}
}

func TestExchangeSignedKey_TamperedSignature(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	identify(t, r, i)

	eph, sig, err := i.Offer()
	require.NoError(t, err)
	sig[len(sig)/2] ^= 0x80

	_, _, err = r.ExchangeSignedKey(eph, sig)
	var sigErr *domain.SignatureVerificationError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, domain.PhaseIdentityExchanged, r.Phase())
	assert.Nil(t, r.session.peerEphemeralPEM)
}

func TestExchangeSignedKey_WrongSigner(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	identify(t, r, i)

	// A different key than the one on file signs the offer.
	imposter := newInitiator(t)
	require.NoError(t, imposter.AcceptIdentity(r.identityPEM, r.paramsPEM))
	eph, sig, err := imposter.Offer()
	require.NoError(t, err)

	_, _, err = r.ExchangeSignedKey(eph, sig)
	var sigErr *domain.SignatureVerificationError
	assert.ErrorAs(t, err, &sigErr)
}

func TestExchangeSignedKey_ForeignGroup(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	identify(t, r, i)

	other, err := crypto.GenerateDHParams(1536, false)
	require.NoError(t, err)
	eph, err := crypto.GenerateDH(other)
	require.NoError(t, err)
	pem, err := crypto.MarshalDHPublicPEM(eph.Public())
	require.NoError(t, err)
	sig, err := crypto.SignPSS(i.key, peerTranscript(r.paramsPEM, pem))
	require.NoError(t, err)

	_, _, err = r.ExchangeSignedKey(pem, sig)
	var malformed *domain.MalformedKeyError
	assert.ErrorAs(t, err, &malformed)
}

func TestOutOfOrder_ProtocolStateError(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)

	var stateErr *domain.ProtocolStateError

	_, _, err := r.ExchangeSignedKey([]byte("irrelevant"), []byte("sig"))
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.PhaseInitialized, stateErr.Phase)
	assert.Equal(t, domain.PhaseInitialized, r.Phase())

	_, _, err = r.Challenge()
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.PhaseInitialized, r.Phase())

	identify(t, r, i)
	_, _, err = r.Challenge()
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.PhaseKeyExchanged, stateErr.Want)
	assert.Equal(t, domain.PhaseIdentityExchanged, r.Phase())
	assert.Nil(t, r.session.derivedKey)
}

func TestChallenge_FreshIVSamePlaintext(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	complete(t, r, i)

	iv1, ct1, err := r.Challenge()
	require.NoError(t, err)
	iv2, ct2, err := r.Challenge()
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)

	p1, err := i.OpenChallenge(iv1, ct1)
	require.NoError(t, err)
	p2, err := i.OpenChallenge(iv2, ct2)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, plaintext, string(p1))
}

func TestDerivedKey_Cached(t *testing.T) {
	r := newResponder(t)
	complete(t, r, newInitiator(t))

	_, _, err := r.Challenge()
	require.NoError(t, err)
	first := append([]byte(nil), r.session.derivedKey...)
	_, _, err = r.Challenge()
	require.NoError(t, err)
	assert.Equal(t, first, r.session.derivedKey)
}

func TestNewIdentityExchange_InvalidatesDerivedKey(t *testing.T) {
	r := newResponder(t)
	first := newInitiator(t)
	complete(t, r, first)

	oldKey, err := first.SessionKey()
	require.NoError(t, err)
	oldKey = append([]byte(nil), oldKey...)

	second := newInitiator(t)
	identify(t, r, second)
	assert.Equal(t, domain.PhaseIdentityExchanged, r.Phase())
	assert.Nil(t, r.session.derivedKey)

	var stateErr *domain.ProtocolStateError
	_, _, err = r.Challenge()
	require.ErrorAs(t, err, &stateErr)

	eph, sig, err := second.Offer()
	require.NoError(t, err)
	srvEph, srvSig, err := r.ExchangeSignedKey(eph, sig)
	require.NoError(t, err)
	require.NoError(t, second.Finish(srvEph, srvSig))

	iv, ct, err := r.Challenge()
	require.NoError(t, err)

	got, err := crypto.DecryptCBC(oldKey, iv, ct)
	if err == nil {
		assert.NotEqual(t, plaintext, string(got))
	}
	got, err = second.OpenChallenge(iv, ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(got))
}

func TestInitiator_RejectsForgedServiceSignature(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	identify(t, r, i)

	eph, sig, err := i.Offer()
	require.NoError(t, err)
	srvEph, srvSig, err := r.ExchangeSignedKey(eph, sig)
	require.NoError(t, err)
	srvSig[0] ^= 0xff

	var sigErr *domain.SignatureVerificationError
	assert.ErrorAs(t, i.Finish(srvEph, srvSig), &sigErr)
	_, err = i.SessionKey()
	assert.Error(t, err)
}

func TestInitiator_OutOfOrder(t *testing.T) {
	i := newInitiator(t)
	_, _, err := i.Offer()
	assert.Error(t, err)
	assert.Error(t, i.Finish(nil, nil))
	_, err = i.OpenChallenge(nil, nil)
	assert.Error(t, err)
}

func TestResponder_ConcurrentChallenges(t *testing.T) {
	r := newResponder(t)
	i := newInitiator(t)
	complete(t, r, i)

	type result struct{ iv, ct []byte }
	results := make(chan result, 16)
	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iv, ct, err := r.Challenge()
			assert.NoError(t, err)
			results <- result{iv, ct}
		}()
	}
	wg.Wait()
	close(results)

	for res := range results {
		got, err := i.OpenChallenge(res.iv, res.ct)
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(got))
	}
}
