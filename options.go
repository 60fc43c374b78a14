package jsonform

import "go.uber.org/zap"

// DefaultSizeLimit is the aggregate file size allowed per form when the form
// does not declare a valid limit of its own.
const DefaultSizeLimit int64 = 10 * 1024 * 1024

// DefaultMaxConcurrentReads bounds the number of files read at once while a
// form is serialised.
const DefaultMaxConcurrentReads = 8

type options struct {
	logger             *zap.Logger
	chunkSize          int
	maxConcurrentReads int
	sizeLimit          int64
}

// Option configures a [Builder], [SizeGuard] or [Handler].
type Option func(*options)

// WithLogger sets the logger used to report skipped fields and invalid
// configuration. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithChunkSize sets the number of bytes read from a file at a time.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithMaxConcurrentReads bounds the number of files read concurrently.
func WithMaxConcurrentReads(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrentReads = n
		}
	}
}

// WithDefaultSizeLimit replaces [DefaultSizeLimit] for forms that do not
// declare a valid limit.
func WithDefaultSizeLimit(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.sizeLimit = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:             zap.NewNop(),
		chunkSize:          DefaultChunkSize,
		maxConcurrentReads: DefaultMaxConcurrentReads,
		sizeLimit:          DefaultSizeLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
