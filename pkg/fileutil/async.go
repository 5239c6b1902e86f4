package fileutil

import (
	"context"
	"io"
	"time"
)

// Future holds the result of an operation running in its own goroutine.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Go runs fn in a new goroutine. A context canceled before fn starts
// completes the future with ctx.Err() without calling fn.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the operation completes.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout is Await bounded by timeout. On expiry it returns
// ErrTimeout; the operation keeps running.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the operation has finished, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done is closed when the operation finishes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// ReadAsync reads the whole file in the background.
func ReadAsync(ctx context.Context, path string) *Future[[]byte] {
	return Go(ctx, func(ctx context.Context) ([]byte, error) {
		f, err := open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return ReaderToBytes(ctxReader{ctx: ctx, r: f})
	})
}

// WriteAsync writes data to path in the background and resolves to the
// number of bytes written.
func WriteAsync(ctx context.Context, path string, data []byte, appendMode bool) *Future[int] {
	return Go(ctx, func(context.Context) (int, error) {
		err := writeFile(path, appendMode, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
		if err != nil {
			return 0, err
		}
		return len(data), nil
	})
}

// WriteWithCallback is WriteAsync that reports the outcome to callback
// instead of returning a Future. callback runs on a background goroutine.
func WriteWithCallback(ctx context.Context, path string, data []byte, appendMode bool, callback func(n int, err error)) {
	f := WriteAsync(ctx, path, data, appendMode)
	go func() {
		n, err := f.Await()
		if callback != nil {
			callback(n, err)
		}
	}()
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
