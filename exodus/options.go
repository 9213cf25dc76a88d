package exodus

import "go.uber.org/zap"

// Option configures Transcribe.
type Option func(*options)

type options struct {
	allowOverride bool
}

func defaultOptions() *options {
	return &options{}
}

// AllowOverride lets a later duplicate name replace an earlier one instead of
// failing with DuplicateNameError. The name keeps its first position.
func AllowOverride() Option {
	return func(o *options) {
		o.allowOverride = true
	}
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	logger *zap.Logger
}

func defaultOpenOptions() *openOptions {
	return &openOptions{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used for file lifecycle events.
func WithLogger(l *zap.Logger) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
