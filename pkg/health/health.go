package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-faster/errors"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service answers liveness and readiness probes. Liveness checks cover the
// process itself; readiness additionally gates on an explicit ready flag so
// the server can drain before shutdown.
type Service struct {
	mu        sync.RWMutex
	ready     bool
	liveness  []check
	readiness []check
}

func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a liveness probe.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness probe.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the explicit readiness gate.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Ready reports the explicit readiness gate.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func runChecks(ctx context.Context, checks []check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(cctx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

func respond(w http.ResponseWriter, failures map[string]string, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	body := map[string]any{"status": "ok"}
	if !ok || len(failures) > 0 {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		if len(failures) > 0 {
			body["failures"] = failures
		}
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := s.liveness
	s.mu.RUnlock()
	respond(w, runChecks(r.Context(), checks), true)
}

// ReadyEndpoint serves the readiness probe: the explicit gate plus every
// registered readiness check must pass.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	checks := s.readiness
	s.mu.RUnlock()
	if !ready {
		respond(w, nil, false)
		return
	}
	respond(w, runChecks(r.Context(), checks), true)
}

// GoroutineCountCheck fails once the process exceeds max goroutines, a
// cheap proxy for leaked request handling.
func GoroutineCountCheck(max int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return errors.Errorf("%d goroutines running, limit %d", n, max)
		}
		return nil
	}
}
