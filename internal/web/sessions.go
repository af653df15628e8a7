package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"oc-ticketing/internal/app"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/session"
)

const cookieName = "oc_session"

type ctxKey struct{}

type entry struct {
	app      *app.App
	lastSeen time.Time
}

// Sessions maps browser cookies to UI sessions. Credentials live in Redis
// when a client is configured, in memory otherwise.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory *app.Factory
	redis   *redis.Client
	ttl     time.Duration
	logger  *logger.Logger
	now     func() time.Time
}

func NewSessions(factory *app.Factory, rdb *redis.Client, ttl time.Duration, l *logger.Logger) *Sessions {
	if l == nil {
		l = logger.Nop()
	}
	return &Sessions{
		entries: make(map[string]*entry),
		factory: factory,
		redis:   rdb,
		ttl:     ttl,
		logger:  l,
		now:     time.Now,
	}
}

func (s *Sessions) credentials(id string) session.Store {
	if s.redis != nil {
		return session.NewRedisStore(s.redis, id, s.ttl)
	}
	return session.NewMemoryStore("")
}

// Acquire returns the session for id, creating a new one when id is unknown.
// New sessions fetch nothing until their first page is mounted. The bool
// reports whether the session was created.
func (s *Sessions) Acquire(ctx context.Context, id string) (*app.App, bool) {
	s.mu.Lock()
	if e, found := s.entries[id]; found && id != "" {
		e.lastSeen = s.now()
		s.mu.Unlock()
		return e.app, false
	}
	id = uuid.NewString()
	a := s.factory.New(id, s.credentials(id))
	s.entries[id] = &entry{app: a, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("SESSION", fmt.Sprintf("Session %s created", id))
	return a, true
}

// Sweep drops sessions idle for longer than the TTL.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("SESSION", fmt.Sprintf("Expired %d idle sessions", removed))
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Middleware attaches the caller's session to the request context, setting
// the cookie when a new session is made.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(cookieName); err == nil {
			id = c.Value
		}
		a, created := s.Acquire(r.Context(), id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    a.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(s.ttl.Seconds()),
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, a)))
	})
}

func fromContext(ctx context.Context) *app.App {
	a, _ := ctx.Value(ctxKey{}).(*app.App)
	return a
}
