package channel_test

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
	"secretchannel/internal/metrics"
	"secretchannel/internal/protocol/handshake"
	"secretchannel/internal/services/channel"
)

func newService(t *testing.T) (*channel.Service, *metrics.Metrics) {
	t.Helper()
	key, err := crypto.GenerateRSA(1024)
	require.NoError(t, err)
	params, err := crypto.GenerateDHParams(1024, false)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	m := metrics.New(prometheus.NewRegistry())

	svc, err := channel.New(
		domain.Identity{Key: key, Params: params},
		channel.Plaintext("Decrypt me", "FLAG{abc}"),
		m, log,
	)
	require.NoError(t, err)
	return svc, m
}

func TestPlaintext(t *testing.T) {
	assert.Equal(t, "text - secret", string(channel.Plaintext("text", "secret")))
}

func TestService_Handshake(t *testing.T) {
	svc, m := newService(t)

	key, err := crypto.GenerateRSA(1024)
	require.NoError(t, err)
	peer := handshake.NewInitiator(key)

	pem, err := peer.IdentityPEM()
	require.NoError(t, err)
	idResp, err := svc.ExchangeIdentity(domain.IdentityRequest{Key: string(pem)})
	require.NoError(t, err)
	require.NoError(t, peer.AcceptIdentity([]byte(idResp.Key), []byte(idResp.DHParams)))

	eph, sig, err := peer.Offer()
	require.NoError(t, err)
	skResp, err := svc.ExchangeSignedKey(domain.SignedKey{Key: string(eph), Signature: crypto.B64(sig)})
	require.NoError(t, err)

	srvSig, err := crypto.FromB64(skResp.Signature)
	require.NoError(t, err)
	require.NoError(t, peer.Finish([]byte(skResp.Key), srvSig))
	assert.Equal(t, domain.PhaseKeyExchanged, svc.Phase())

	ch, err := svc.Challenge()
	require.NoError(t, err)
	iv, err := crypto.FromB64(ch.IV)
	require.NoError(t, err)
	ct, err := crypto.FromB64(ch.Ciphertext)
	require.NoError(t, err)

	got, err := peer.OpenChallenge(iv, ct)
	require.NoError(t, err)
	assert.Equal(t, "Decrypt me - FLAG{abc}", string(got))

	for _, op := range []string{channel.OpExchangeIdentity, channel.OpExchangeSignedKey, channel.OpChallenge} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues(op, metrics.OutcomeOK)), op)
	}
	assert.Equal(t, float64(domain.PhaseKeyExchanged), testutil.ToFloat64(m.Phase))
}

func TestService_SignatureNotBase64(t *testing.T) {
	svc, m := newService(t)

	key, err := crypto.GenerateRSA(1024)
	require.NoError(t, err)
	peer := handshake.NewInitiator(key)
	pem, err := peer.IdentityPEM()
	require.NoError(t, err)
	idResp, err := svc.ExchangeIdentity(domain.IdentityRequest{Key: string(pem)})
	require.NoError(t, err)
	require.NoError(t, peer.AcceptIdentity([]byte(idResp.Key), []byte(idResp.DHParams)))
	eph, _, err := peer.Offer()
	require.NoError(t, err)

	_, err = svc.ExchangeSignedKey(domain.SignedKey{Key: string(eph), Signature: "!!not base64!!"})
	var sigErr *domain.SignatureVerificationError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, domain.PhaseIdentityExchanged, svc.Phase())
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.Operations.WithLabelValues(channel.OpExchangeSignedKey, metrics.OutcomeBadSignature)))
}

func TestService_ChallengeBeforeHandshake(t *testing.T) {
	svc, m := newService(t)

	_, err := svc.Challenge()
	var stateErr *domain.ProtocolStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.Operations.WithLabelValues(channel.OpChallenge, metrics.OutcomeProtocolState)))
}

func TestService_MalformedIdentity(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ExchangeIdentity(domain.IdentityRequest{Key: "garbage"})
	var malformed *domain.MalformedKeyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, domain.PhaseInitialized, svc.Phase())
}

func TestService_SignatureNotBase64BeforeIdentity(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ExchangeSignedKey(domain.SignedKey{Key: "whatever", Signature: "!!not base64!!"})
	var stateErr *domain.ProtocolStateError
	require.ErrorAs(t, err, &stateErr)
}
