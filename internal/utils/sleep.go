package utils

import (
	"context"
	"sync/atomic"
	"time"
)

type sleeper func(ctx context.Context, d time.Duration) error

var current atomic.Pointer[sleeper]

func init() {
	ResetSleepFunc()
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return (*current.Load())(ctx, d)
}

// SetSleepFunc replaces the wait with f, mainly so tests can record backoffs
// without sleeping.
func SetSleepFunc(f func(time.Duration)) {
	s := sleeper(func(_ context.Context, d time.Duration) error {
		f(d)
		return nil
	})
	current.Store(&s)
}

func ResetSleepFunc() {
	s := sleeper(timerSleep)
	current.Store(&s)
}

func timerSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
