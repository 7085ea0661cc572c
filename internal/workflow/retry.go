package workflow

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryPolicy — границы внутренних повторов при транзиентных ошибках
// хранилища и проигранных оптимистических проверках.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 50 * time.Millisecond
	}
	return p
}

// withRetry выполняет op, повторяя её при транзиентных ошибках и
// SyncConflict с экспоненциальной задержкой. Каждая попытка — это
// полный повтор операции, включая свежее чтение.
func withRetry(ctx context.Context, policy RetryPolicy, op func() error) error {
	policy = policy.normalized()

	var err error
	backoff := policy.Backoff
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return wrapErr(KindTransient, "cancelled while retrying", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err = op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	// Повторяем только транзиентные сбои и проигранную оптимистическую
	// проверку; прочие конфликты (дубль, терминальный статус) повторять
	// бессмысленно, поэтому SyncConflict сравнивается по значению,
	// а не по Kind.
	if errors.Is(err, ErrTransient) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if e == ErrSyncConflict {
			return true
		}
	}
	return false
}

// isTransientStoreError распознаёт ошибки, которые имеет смысл повторить:
// конкуренция за блокировки и сериализацию транзакций.
func isTransientStoreError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), // sqlite
		strings.Contains(msg, "deadlock detected"),                  // postgres 40P01
		strings.Contains(msg, "could not serialize access"),         // postgres 40001
		strings.Contains(msg, "lock timeout"),
		strings.Contains(msg, "connection reset"):
		return true
	}
	return false
}
