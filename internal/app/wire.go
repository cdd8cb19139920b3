package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"secretchannel/internal/domain"
	"secretchannel/internal/metrics"
	"secretchannel/internal/server"
	"secretchannel/internal/services/channel"
	identitysvc "secretchannel/internal/services/identity"
	"secretchannel/internal/store"
)

// Wire bundles the stores, services and HTTP surface of a running service.
type Wire struct {
	Identity    domain.Identity
	Fingerprint domain.Fingerprint
	Handshake   domain.HandshakeService
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	Server      *server.Server
}

// NewIdentityService builds the identity service, backed by a file store when
// one is configured.
func NewIdentityService(cfg Config, log logrus.FieldLogger) *identitysvc.Service {
	sc := cfg.Lab.SecretChannel
	var ids domain.IdentityStore
	if sc.Identity.StoreDir != "" {
		ids = store.NewIdentityFileStore(sc.Identity.StoreDir)
	}
	return identitysvc.New(ids, identitysvc.Options{
		RSABits:          sc.Server.RSAKeySize,
		DHBits:           sc.Server.DHKeySize,
		GenerateDHParams: sc.Server.GenerateDHParams,
	}, log.WithField("component", "identity"))
}

// NewWire constructs the dependency graph from cfg. Identity provisioning
// happens here, so this can take a while for large key sizes.
func NewWire(cfg Config, log logrus.FieldLogger) (*Wire, error) {
	id, fp, err := NewIdentityService(cfg, log).ProvisionIdentity(cfg.IdentityPassphrase)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	challenge := cfg.Lab.SecretChannel.Challenge
	hs, err := channel.New(
		id,
		channel.Plaintext(challenge.Text, challenge.Flag),
		m,
		log.WithField("component", "handshake"),
	)
	if err != nil {
		return nil, err
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = reg
	}
	srv := server.New(hs, m, gatherer, log.WithField("component", "http"))

	return &Wire{
		Identity:    id,
		Fingerprint: fp,
		Handshake:   hs,
		Metrics:     m,
		Registry:    reg,
		Server:      srv,
	}, nil
}
