package launcher

import (
	"context"
	"sync"
)

type fieldState uint8

const (
	unresolved fieldState = iota
	present
	absent
)

// lazy memoizes one value fetched from the bridge. It tells "not fetched
// yet" apart from "fetched and absent"; both present and absent results are
// final. Fetch errors are not cached.
//
// At most one fetch runs at a time. Other callers wait for it, or for
// their own ctx to end, whichever comes first.
type lazy[T any] struct {
	mu       sync.Mutex
	state    fieldState
	val      T
	inflight chan struct{} // Closed when the running fetch finishes
}

// get returns the cached value, calling fetch at most once per successful
// resolution. ok is false when the value was resolved as absent.
func (c *lazy[T]) get(ctx context.Context, fetch func() (val T, ok bool, err error)) (T, bool, error) {
	var zero T
	for {
		c.mu.Lock()
		switch c.state {
		case present:
			val := c.val
			c.mu.Unlock()
			return val, true, nil
		case absent:
			c.mu.Unlock()
			return zero, false, nil
		}

		if wait := c.inflight; wait != nil {
			c.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return zero, false, ctx.Err()
			}
		}

		done := make(chan struct{})
		c.inflight = done
		c.mu.Unlock()

		val, ok, err := fetch()

		c.mu.Lock()
		c.inflight = nil
		close(done)
		if err == nil {
			if ok {
				c.state = present
				c.val = val
			} else {
				c.state = absent
			}
		}
		c.mu.Unlock()

		if err != nil || !ok {
			return zero, false, err
		}
		return val, true, nil
	}
}
