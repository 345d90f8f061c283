package soltree

// selectorCache memoises the result of each named selector for the
// duration of a single Evaluate call. A decision tree often asks the same
// selector (e.g. "country") from several unrelated conditions while
// evaluating one value, and the host selector may be expensive (a provider
// lookup, a parse); caching it once per evaluation avoids paying for it
// twice while still reflecting the value passed to that particular
// Evaluate call, unlike a cache that outlives it.
type selectorCache[T any] struct {
	raw    map[string]Selector[T]
	cached map[string]any
}

func newSelectorCache[T any](raw map[string]Selector[T]) *selectorCache[T] {
	return &selectorCache[T]{
		raw:    raw,
		cached: make(map[string]any, len(raw)),
	}
}

// reset clears memoised results; called at the start of every Evaluate so
// selector output never leaks from one evaluated value to the next.
func (c *selectorCache[T]) reset() {
	clear(c.cached)
}

// wrapped returns a Selector that looks up name's cached result before
// falling back to invoking the underlying selector.
func (c *selectorCache[T]) wrapped(name string) Selector[T] {
	return func(value T) any {
		if v, ok := c.cached[name]; ok {
			selectorCacheHits.WithLabelValues(name).Inc()
			return v
		}
		selectorCacheMisses.WithLabelValues(name).Inc()
		v := c.raw[name](value)
		c.cached[name] = v
		return v
	}
}
