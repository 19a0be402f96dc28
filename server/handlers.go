package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/logger"
	"github.com/dacite-io/dacite/store"
	"github.com/dacite-io/dacite/sync"
	"github.com/dacite-io/dacite/version"
)

// handleGetBlob serves GET /blob/{hex}: the raw node bytes at a
// content address.
func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	addr, err := hash.Parse(r.PathValue("hex"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.store.Get(r.Context(), addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "blob not found", http.StatusNotFound)
			return
		}
		s.logger.Errorw("Blob read failed",
			logger.FieldAddress, addr.Hex(),
			logger.FieldError, err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// handlePutBlob serves PUT /blob/{hex}. The body must be a node that
// hashes to the address in the path; anything else is rejected before
// it reaches storage.
func (s *Server) handlePutBlob(w http.ResponseWriter, r *http.Request) {
	addr, err := hash.Parse(r.PathValue("hex"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBlobSize+1))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if len(data) > MaxBlobSize {
		http.Error(w, "blob exceeds size limit", http.StatusRequestEntityTooLarge)
		return
	}

	if _, err := sync.Verify(addr, data); err != nil {
		s.logger.Warnw("Rejected blob that does not match its address",
			logger.FieldAddress, addr.Hex(),
			logger.FieldError, err,
		)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := s.store.Put(r.Context(), addr, data); err != nil {
		s.logger.Errorw("Blob write failed",
			logger.FieldAddress, addr.Hex(),
			logger.FieldError, err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleGetRoot serves GET /root: the node's advertised root address.
func (s *Server) handleGetRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"root": s.Root().Hex()})
}

// handleSync upgrades to WebSocket and runs one symmetric
// reconciliation session against the local store.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed",
			logger.FieldError, err,
		)
		return
	}
	defer conn.Close()

	sessionLogger := s.logger.With(
		logger.FieldSessionID, uuid.NewString(),
		logger.FieldPeer, r.RemoteAddr,
	)

	peer := sync.NewPeer(conn, s.Root(), s.store, sessionLogger)
	peer.Name = s.cfg.NodeName
	remoteRoot, sent, received, err := peer.Reconcile(r.Context())
	if err != nil {
		sessionLogger.Warnw("Sync session failed",
			logger.FieldError, err,
		)
		return
	}

	sessionLogger.Infow("Sync session complete",
		"remote_root", remoteRoot.Hex(),
		"sent", sent,
		"received", received,
	)
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleVersion serves GET /version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, version.Get())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
