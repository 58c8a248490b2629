package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/techgeo/backend/internal/logger"
)

// recoverAndLog логирует panic вместе со стеком, не роняя процесс.
func recoverAndLog(name string) {
	if r := recover(); r != nil {
		logger.WithComponent("goroutine").
			WithField("name", name).
			Errorf("panic: %v\n%s", r, debug.Stack())
	}
}

// SafeGo запускает горутину с обработкой panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverAndLog(name)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer recoverAndLog(name)
		fn(ctx)
	}()
}
