package sessionstore

import "time"

type config struct {
	ttl    time.Duration
	now    func() time.Time
	prefix string
}

func defaultConfig() config {
	return config{ttl: DefaultTTL, now: time.Now, prefix: "checkin:session:"}
}

// Option configures a session store.
type Option func(*config)

// WithTTL sets the idle lifetime of a session.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source of the memory store.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithKeyPrefix sets the redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}
