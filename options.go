package kvbind

import "log/slog"

// DefaultKeyPrefix namespaces binding keys inside the store so they do not
// collide with entries written by other code sharing the same store.
const DefaultKeyPrefix = "kvbind:"

// Option configures a binding at construction time.
type Option func(*bindConfig)

type bindConfig struct {
	prefix string
	codec  Codec
	logger *slog.Logger
}

func defaultBindConfig() bindConfig {
	return bindConfig{
		prefix: DefaultKeyPrefix,
		codec:  JSON,
	}
}

// WithKeyPrefix replaces DefaultKeyPrefix for this binding. An empty prefix
// is allowed and stores the key verbatim.
func WithKeyPrefix(prefix string) Option {
	return func(c *bindConfig) {
		c.prefix = prefix
	}
}

// WithCodec replaces the default JSON codec.
func WithCodec(codec Codec) Option {
	return func(c *bindConfig) {
		c.codec = codec
	}
}

// WithLogger sets the logger for binding lifecycle events. If nil or not
// set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *bindConfig) {
		c.logger = logger
	}
}
