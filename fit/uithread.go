package fit

import (
	"context"
	"errors"
)

// ErrUIThreadStopped is returned when work is queued after Run returned.
var ErrUIThreadStopped = errors.New("UI 线程已停止")

type uiKey struct{}

// UIThread serializes work onto one goroutine, the way platform text
// measurement must run on the main thread. Run owns the thread; Call and
// Post hand work to it from anywhere.
type UIThread struct {
	funcs chan func(context.Context)
	done  chan struct{}
}

func NewUIThread() *UIThread {
	return &UIThread{
		funcs: make(chan func(context.Context)),
		done:  make(chan struct{}),
	}
}

// Run executes queued functions until ctx is cancelled. It must be called
// exactly once, from the goroutine that acts as the UI thread.
func (u *UIThread) Run(ctx context.Context) error {
	defer close(u.done)
	uctx := context.WithValue(ctx, uiKey{}, u)
	for {
		select {
		case f := <-u.funcs:
			f(uctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// On reports whether ctx belongs to a function running on u.
func (u *UIThread) On(ctx context.Context) bool {
	t, _ := ctx.Value(uiKey{}).(*UIThread)
	return t == u
}

// Call runs f on the UI thread and waits for it. Called from the UI thread
// itself, f runs inline so nested calls cannot deadlock.
func (u *UIThread) Call(ctx context.Context, f func(context.Context)) error {
	if u.On(ctx) {
		f(ctx)
		return nil
	}
	res := make(chan struct{})
	wrapped := func(uctx context.Context) {
		defer close(res)
		f(uctx)
	}
	select {
	case u.funcs <- wrapped:
	case <-u.done:
		return ErrUIThreadStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues f without waiting. Each call parks a goroutine until Run
// takes f, so Post only makes sense for a thread whose Run is running or
// about to start: work posted before Run waits for it, work posted after
// Run returned is dropped, and if Run is never called the goroutine never
// exits.
func (u *UIThread) Post(f func(context.Context)) {
	go func() {
		select {
		case u.funcs <- f:
		case <-u.done:
		}
	}()
}
