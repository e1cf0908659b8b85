package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type managedSession struct {
	session    *Session
	cancel     context.CancelFunc
	lastAccess time.Time
}

// Manager hosts one Session per viewer, each with its own Run goroutine.
// Sessions idle for longer than idleTimeout are stopped and forgotten.
type Manager struct {
	source      CandidateSource
	resolver    Resolver
	cfg         Config
	idleTimeout time.Duration
	log         zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*managedSession
	now      func() time.Time
}

func NewManager(source CandidateSource, resolver Resolver, cfg Config, idleTimeout time.Duration, log zerolog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		source:      source,
		resolver:    resolver,
		cfg:         cfg,
		idleTimeout: idleTimeout,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*managedSession),
		now:         time.Now,
	}

	if idleTimeout > 0 {
		m.wg.Add(1)
		go m.janitor(max(idleTimeout/2, time.Second))
	}
	return m
}

// Session returns the session of viewerID, creating and loading it on first
// use. A failed first load still returns the session together with the
// error so the caller can offer a retry.
func (m *Manager) Session(ctx context.Context, viewerID string) (*Session, error) {
	m.mu.Lock()
	if ms, ok := m.sessions[viewerID]; ok {
		ms.lastAccess = m.now()
		m.mu.Unlock()
		return ms.session, nil
	}

	session := NewSession(viewerID, m.source, m.resolver, m.cfg, m.log)
	sessionCtx, cancel := context.WithCancel(m.ctx)
	m.sessions[viewerID] = &managedSession{session: session, cancel: cancel, lastAccess: m.now()}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = session.Run(sessionCtx)
	}()
	m.mu.Unlock()

	return session, session.Load(ctx)
}

// Drop stops the session of viewerID if there is one.
func (m *Manager) Drop(viewerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.sessions[viewerID]; ok {
		ms.cancel()
		delete(m.sessions, viewerID)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops every session and waits for in-flight resolutions.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*managedSession)
}

func (m *Manager) janitor(every time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.idleTimeout)
	for id, ms := range m.sessions {
		if ms.lastAccess.Before(cutoff) {
			ms.cancel()
			delete(m.sessions, id)
			m.log.Debug().Str("viewer_id", id).Msg("discovery session evicted")
		}
	}
}
