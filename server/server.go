// Package server exposes a Dacite node over HTTP: blob fetch and
// publish by content address, a WebSocket sync endpoint, and health
// and version probes.
//
// The server never trusts the wire. Every blob accepted over PUT or
// sync is re-hashed and must match the address it claims; the engine
// alone decides identity.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/store"
)

// MaxBlobSize bounds a single node blob accepted over the wire.
const MaxBlobSize = 16 << 20 // 16 MiB

// Config holds the server's tunables.
type Config struct {
	// Addr is the listen address, e.g. ":8420".
	Addr string

	// NodeName is the name advertised in sync hellos.
	NodeName string

	// RateLimit is the sustained per-client request rate. Zero
	// disables limiting.
	RateLimit float64

	// RateBurst is the per-client burst size. Defaults to 2x the rate
	// when zero.
	RateBurst int
}

// Server is a Dacite blob and sync server.
type Server struct {
	cfg    Config
	store  store.Store
	logger *zap.SugaredLogger

	// root is the content address this node advertises to sync peers.
	// Stored as *hash.Hash behind an atomic so handlers never block on
	// a mutating caller.
	root atomic.Pointer[hash.Hash]

	upgrader websocket.Upgrader

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	httpServer *http.Server
}

// New creates a server over the given store.
func New(cfg Config, st store.Store, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 << 10,
			WriteBufferSize: 32 << 10,
		},
		limiters: make(map[string]*rate.Limiter),
	}
	var zero hash.Hash
	s.root.Store(&zero)
	return s
}

// SetRoot updates the root address advertised to sync peers.
func (s *Server) SetRoot(h hash.Hash) {
	s.root.Store(&h)
}

// Root returns the currently advertised root.
func (s *Server) Root() hash.Hash {
	return *s.root.Load()
}

// Routes builds the HTTP mux with all endpoints and middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /blob/{hex}", s.handleGetBlob)
	mux.HandleFunc("PUT /blob/{hex}", s.handlePutBlob)
	mux.HandleFunc("GET /root", s.handleGetRoot)
	mux.HandleFunc("GET /sync", s.handleSync)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)
	return s.withRequestLogging(s.withRateLimit(mux))
}

// Start begins serving and blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("Server listening",
		"addr", s.cfg.Addr,
		"node", s.cfg.NodeName,
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Infow("Server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// limiter returns the rate limiter for a client address, creating it
// on first sight.
func (s *Server) limiter(client string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[client]
	if !ok {
		burst := s.cfg.RateBurst
		if burst == 0 {
			burst = int(2 * s.cfg.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		l = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)
		s.limiters[client] = l
	}
	return l
}
