package server

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"secretchannel/internal/domain"
	"secretchannel/internal/metrics"
)

const maxBodyBytes = 64 << 10

// Route paths.
const (
	PathExchangeIdentity       = "/exchange/identity-dh-params"
	PathExchangeIdentityLegacy = "/exchange/rsa-dh-params"
	PathExchangeDH             = "/exchange/dh"
	PathChallenge              = "/challenge"
	PathHealth                 = "/healthz"
	PathMetrics                = "/metrics"
)

// Server routes HTTP requests to a domain.HandshakeService.
type Server struct {
	svc     domain.HandshakeService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	router  *httprouter.Router
}

// New builds the router. gatherer may be nil to disable /metrics.
func New(
	svc domain.HandshakeService,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	log logrus.FieldLogger,
) *Server {
	s := &Server{svc: svc, metrics: m, log: log, router: httprouter.New()}

	s.router.POST(PathExchangeIdentity, s.handleExchangeIdentity)
	s.router.POST(PathExchangeIdentityLegacy, s.handleExchangeIdentity)
	s.router.POST(PathExchangeDH, s.handleExchangeDH)
	s.router.GET(PathChallenge, s.handleChallenge)
	s.router.GET(PathHealth, s.handleHealth)
	if gatherer != nil {
		s.router.Handler(http.MethodGet, PathMetrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.log.WithField("panic", v).Error("handler panicked")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return s
}

// Handler returns the router wrapped in the access log middleware.
func (s *Server) Handler() http.Handler {
	return s.accessLog(s.router)
}

func (s *Server) handleExchangeIdentity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req domain.IdentityRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.svc.ExchangeIdentity(req)
	if err != nil {
		writeHandshakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExchangeDH(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req domain.SignedKey
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.svc.ExchangeSignedKey(req)
	if err != nil {
		writeHandshakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp, err := s.svc.Challenge()
	if err != nil {
		writeHandshakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, domain.Health{Status: "ok", Phase: s.svc.Phase().String()})
}

// decode reads a JSON body into out, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body").Error())
		return false
	}
	return true
}

// writeHandshakeError surfaces every handshake failure as a client error.
func writeHandshakeError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, domain.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
