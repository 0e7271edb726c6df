package bundle

import (
	"context"

	"github.com/zjrosen/mirrorkit/internal/log"
)

// Callback receives the outcome of an asynchronous load. Exactly one of its
// methods is called.
type Callback interface {
	OnSuccess(payload string)
	OnError(err error)
}

// CallbackFuncs adapts a pair of functions to Callback. Nil funcs are ignored.
type CallbackFuncs struct {
	Success func(payload string)
	Error   func(err error)
}

// OnSuccess calls Success.
func (c CallbackFuncs) OnSuccess(payload string) {
	if c.Success != nil {
		c.Success(payload)
	}
}

// OnError calls Error.
func (c CallbackFuncs) OnError(err error) {
	if c.Error != nil {
		c.Error(err)
	}
}

// LoadAsync loads key from src on a new goroutine and reports to cb.
// The returned channel is closed after cb has been called.
func LoadAsync(ctx context.Context, src Source, key string, cb Callback) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		payload, err := src.Payload(ctx, key)
		if err != nil {
			log.Warn(log.CatBundle, "Async payload load failed", "key", key, "error", err)
			cb.OnError(err)
			return
		}
		cb.OnSuccess(payload)
	}()
	return done
}
