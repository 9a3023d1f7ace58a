package lock

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLockTimeout возвращается, если блокировку не удалось получить до отмены контекста
	ErrLockTimeout = errors.New("lock: failed to acquire lock")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// UnlockFunc освобождает полученную блокировку, повторный вызов безопасен
type UnlockFunc func()

// Locker блокировка по строковому ключу
type Locker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}

// TimeoutLocker ограничивает ожидание блокировки
type TimeoutLocker struct {
	next    Locker
	timeout time.Duration
}

// WithAcquireTimeout оборачивает locker, timeout <= 0 отключает ограничение
func WithAcquireTimeout(next Locker, timeout time.Duration) *TimeoutLocker {
	return &TimeoutLocker{next: next, timeout: timeout}
}

// Lock ждет блокировку не дольше timeout
// Таймаут действует только на ожидание, контекст вызывающего не меняется
func (l *TimeoutLocker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	if l.timeout <= 0 {
		return l.next.Lock(ctx, key)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	return l.next.Lock(acquireCtx, key)
}
