package app_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretchannel/internal/app"
	"secretchannel/internal/crypto"
	"secretchannel/internal/domain"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()
	cfg := app.Default()
	cfg.Lab.SecretChannel.Server.RSAKeySize = 1024
	cfg.Lab.SecretChannel.Server.DHKeySize = 1024
	cfg.Lab.SecretChannel.Challenge.Flag = "FLAG{wire}"
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewWire(t *testing.T) {
	w, err := app.NewWire(testConfig(t), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1024, w.Identity.Key.N.BitLen())
	assert.Equal(t, 1024, w.Identity.Params.P.BitLen())
	assert.Equal(t, crypto.FingerprintRSA(&w.Identity.Key.PublicKey), w.Fingerprint)
	assert.Equal(t, domain.PhaseInitialized, w.Handshake.Phase())

	ts := httptest.NewServer(w.Server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewWire_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	w, err := app.NewWire(cfg, quietLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(w.Server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewWire_PersistsIdentity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Lab.SecretChannel.Identity.StoreDir = t.TempDir()
	cfg.IdentityPassphrase = "Correct-Horse-9-Battery"

	first, err := app.NewWire(cfg, quietLogger())
	require.NoError(t, err)
	second, err := app.NewWire(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	fp, err := app.NewIdentityService(cfg, quietLogger()).FingerprintIdentity(cfg.IdentityPassphrase)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, fp)
}
