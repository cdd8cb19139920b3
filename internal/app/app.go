package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// App is a configured service ready to listen.
type App struct {
	cfg  Config
	log  logrus.FieldLogger
	wire *Wire
}

// New provisions the identity and builds the service described by cfg.
func New(cfg Config, log logrus.FieldLogger) (*App, error) {
	w, err := NewWire(cfg, log)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, log: log, wire: w}, nil
}

// Wire exposes the dependency graph.
func (a *App) Wire() *Wire { return a.wire }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := a.cfg.Lab.SecretChannel.Server.Addr()
	hs := &http.Server{
		Addr:              addr,
		Handler:           a.wire.Server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.WithFields(logrus.Fields{
			"addr":        addr,
			"fingerprint": a.wire.Fingerprint,
		}).Info("secret channel listening")
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return hs.Shutdown(sctx)
}
