package tenant

import "sync"

// Locker serializa escritores del mismo tenant dentro del proceso.
// Tenants distintos nunca comparten mutex; las entradas se liberan cuando no quedan usuarios.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*tenantLock
}

type tenantLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker construye el locker vacío.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*tenantLock)}
}

// Lock bloquea el tenant y devuelve la función que lo libera.
func (l *Locker) Lock(tenantID string) (unlock func()) {
	l.mu.Lock()
	tl, ok := l.locks[tenantID]
	if !ok {
		tl = &tenantLock{}
		l.locks[tenantID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, tenantID)
		}
		l.mu.Unlock()
	}
}

// Len número de tenants con escritores activos o en espera.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
