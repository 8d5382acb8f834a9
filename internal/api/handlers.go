package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/core"
	"github.com/slyt3/Gyre/internal/journal"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/metrics"
	"github.com/slyt3/Gyre/internal/ring"
)

// MaxBodyBytes caps push request bodies.
const MaxBodyBytes = 64 << 10

type Handlers struct {
	Engine  *core.Engine
	Worker  *journal.Worker
	Metrics *metrics.Registry
}

type pushRequest struct {
	Value string `json:"value"`
}

type pullResponse struct {
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandlers(engine *core.Engine, worker *journal.Worker, reg *metrics.Registry) *Handlers {
	return &Handlers{Engine: engine, Worker: worker, Metrics: reg}
}

// Routes registers every endpoint on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/push", h.HandlePush)
	mux.HandleFunc("/v1/pull", h.HandlePull)
	mux.HandleFunc("/v1/state", h.HandleState)
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.HandleFunc("/readyz", h.HandleReady)
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics.Handler())
	}
	return mux
}

// HandlePush appends the request value: 201 on success, 409 when full.
func (h *Handlers) HandlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.Engine.Push(req.Value); err != nil {
		if errors.Is(err, ring.ErrFull) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		logging.Error("push_failed", logging.Fields{Component: "api", Error: err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "push failed"})
		return
	}
	writeJSON(w, http.StatusCreated, h.Engine.State())
}

// HandlePull removes the oldest value: 200 with the value, 204 when empty.
func (h *Handlers) HandlePull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	value, ok := h.Engine.Pull()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pullResponse{Value: value})
}

func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.State())
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := assert.NotNil(h, "handlers"); err != nil {
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := assert.NotNil(h, "handlers"); err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := assert.NotNil(h.Engine, "engine"); err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if h.Worker != nil {
		if !h.Worker.IsHealthy() {
			http.Error(w, "journal unhealthy", http.StatusServiceUnavailable)
			return
		}
		if h.Worker.DB() == nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("response_encode_failed", logging.Fields{Component: "api", Error: err.Error()})
	}
}
