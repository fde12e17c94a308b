package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumea/checkout-bff/internal/checkout"
	"github.com/lumea/checkout-bff/internal/upstream"
)

// entry pairs a checkout session with its last-use time for idle expiry.
type entry struct {
	session  *checkout.Session
	lastSeen time.Time
}

// Registry holds the live checkout sessions, keyed by the opaque token the
// shopper's cookie carries. Sessions are scoped to the checkout flow, not
// the process: idle ones are expired by a janitor goroutine.
type Registry struct {
	client upstream.Client
	cfg    checkout.Config
	lg     *zap.Logger
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry builds a Registry that constructs sessions around client.
func NewRegistry(client upstream.Client, cfg checkout.Config, ttl time.Duration, lg *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		client:  client,
		cfg:     cfg,
		lg:      lg,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Create registers a fresh session and returns its token.
func (r *Registry) Create() (string, *checkout.Session) {
	token := uuid.New().String()
	s := checkout.NewSession(r.client, r.cfg, r.lg.With(zap.String("session", token[:8])))

	r.mu.Lock()
	r.entries[token] = &entry{session: s, lastSeen: time.Now()}
	r.mu.Unlock()

	return token, s
}

// Get returns the session for token and refreshes its idle timer.
func (r *Registry) Get(token string) (*checkout.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.session, true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StartJanitor evicts idle sessions every interval until ctx is done.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := r.evictIdle(now); n > 0 {
					r.lg.Debug("expired idle sessions", zap.Int("count", n))
				}
			}
		}
	}()
}

func (r *Registry) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for token, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.entries, token)
			n++
		}
	}
	return n
}
