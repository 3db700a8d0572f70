package lock

import (
	"context"
	"sync"

	"github.com/garyjia/ai-collections/internal/application/port"
)

// LocalLocker implements port.InvoiceLocker in process, for single-instance deployments
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire takes the invoice lock or returns port.ErrLockHeld. It never blocks.
func (l *LocalLocker) Acquire(_ context.Context, invoiceID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[invoiceID]; ok {
		return nil, port.ErrLockHeld
	}
	l.held[invoiceID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, invoiceID)
			l.mu.Unlock()
		})
	}, nil
}

var _ port.InvoiceLocker = (*LocalLocker)(nil)
