// Package synclock garante que uma campanha não seja sincronizada por duas
// execuções ao mesmo tempo (agendador e force-sync, ou duas instâncias)
package synclock

import (
	"context"
	"sync"
)

//go:generate mockgen -source=synclock.go -destination=mocks/synclock.go -package=mocks

type Locker interface {
	// TryLock não bloqueia: ok=false quando a chave já está travada
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
