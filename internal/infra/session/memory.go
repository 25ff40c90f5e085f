package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/dsx-leads/internal/wizard"
)

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	locks   map[string]*sessionLock
	ttl     time.Duration
	now     func() time.Time
}

// sessionLock serializa as requisições de uma sessão. refs conta quem segura
// ou espera o lock; em zero ele sai do mapa.
type sessionLock struct {
	sem  chan struct{}
	refs int
}

type entry struct {
	state     []byte
	claims    map[Guard]bool
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		locks:   make(map[string]*sessionLock),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) live(id string) (*entry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, false
	}
	return e, true
}

func (m *MemoryStore) Load(_ context.Context, id string) (*wizard.State, error) {
	m.mu.Lock()
	e, ok := m.live(id)
	var raw []byte
	if ok {
		raw = e.state
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (m *MemoryStore) Save(_ context.Context, id string, st *wizard.State) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(id)
	if !ok {
		e = &entry{claims: make(map[Guard]bool)}
		m.entries[id] = e
	}
	e.state = raw
	e.expiresAt = m.now().Add(m.ttl)
	return nil
}

// Claim devolve true para um único chamador até a reserva ser liberada.
func (m *MemoryStore) Claim(_ context.Context, id string, g Guard) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(id)
	if !ok {
		return false, ErrNotFound
	}
	if e.claims[g] {
		return false, nil
	}
	e.claims[g] = true
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, id string, g Guard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.live(id); ok {
		delete(e.claims, g)
	}
	return nil
}

// Lock espera até ser o único dono da sessão ou até ctx terminar.
func (m *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	l := m.acquire(id)
	select {
	case l.sem <- struct{}{}:
		return m.unlocker(id, l), nil
	case <-ctx.Done():
		m.drop(id, l)
		return nil, ctx.Err()
	}
}

// TryLock não espera: false quando outra requisição está com a sessão.
func (m *MemoryStore) TryLock(_ context.Context, id string) (func(), bool, error) {
	l := m.acquire(id)
	select {
	case l.sem <- struct{}{}:
		return m.unlocker(id, l), true, nil
	default:
		m.drop(id, l)
		return nil, false, nil
	}
}

func (m *MemoryStore) acquire(id string) *sessionLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{sem: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	return l
}

func (m *MemoryStore) drop(id string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}

func (m *MemoryStore) unlocker(id string, l *sessionLock) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			m.drop(id, l)
		})
	}
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run remove sessões expiradas até ctx terminar.
func (m *MemoryStore) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				log.Printf("🧹 Sessões de registro expiradas removidas: %d", n)
			}
		}
	}
}

func (m *MemoryStore) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}
