package dedupe

const defaultMaxSize = 10_000

type config struct {
	maxSize int
}

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*config)

// WithMaxSize sets the maximum number of IDs to keep in memory.
// If maxSize > 0: bounded mode, the oldest id is evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
