package host

import (
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Options configures a loaded plugin.
type Options struct {
	SampleRate     float64
	MaxBlockSize   int32
	OutboxCapacity int
	QueueCapacity  int
	ParamCapacity  int

	Application *SharedApplication
	Attacher    WindowAttacher
}

// DefaultOptions returns the options used by Load without overrides.
func DefaultOptions() Options {
	return Options{
		SampleRate:     44100,
		MaxBlockSize:   8192,
		OutboxCapacity: event.DefaultOutboxCapacity,
		QueueCapacity:  event.DefaultQueueCapacity,
		ParamCapacity:  vst3.DefaultParameterChangesCapacity,
	}
}

// Option overrides one field of Options.
type Option func(*Options)

// WithOptions replaces every option at once. Zero fields keep their
// defaults.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		if o.SampleRate > 0 {
			dst.SampleRate = o.SampleRate
		}
		if o.MaxBlockSize > 0 {
			dst.MaxBlockSize = o.MaxBlockSize
		}
		if o.OutboxCapacity > 0 {
			dst.OutboxCapacity = o.OutboxCapacity
		}
		if o.QueueCapacity > 0 {
			dst.QueueCapacity = o.QueueCapacity
		}
		if o.ParamCapacity > 0 {
			dst.ParamCapacity = o.ParamCapacity
		}
		if o.Application != nil {
			dst.Application = o.Application
		}
		if o.Attacher != nil {
			dst.Attacher = o.Attacher
		}
	}
}

// WithSampleRate sets the sample rate passed to SetupProcessing.
func WithSampleRate(rate float64) Option {
	return func(o *Options) { o.SampleRate = rate }
}

// WithMaxBlockSize sets the largest block Process will be called with.
func WithMaxBlockSize(n int32) Option {
	return func(o *Options) { o.MaxBlockSize = n }
}

// WithOutboxCapacity bounds the plugin events held between drains.
func WithOutboxCapacity(n int) Option {
	return func(o *Options) { o.OutboxCapacity = n }
}

// WithQueueCapacity bounds the host events pending for the next block.
func WithQueueCapacity(n int) Option {
	return func(o *Options) { o.QueueCapacity = n }
}

// WithParamCapacity sets how many parameter ids one block can automate.
func WithParamCapacity(n int) Option {
	return func(o *Options) { o.ParamCapacity = n }
}

// WithApplication shares app instead of the package default.
func WithApplication(app *SharedApplication) Option {
	return func(o *Options) { o.Application = app }
}

// WithWindowAttacher replaces the platform window attacher.
func WithWindowAttacher(a WindowAttacher) Option {
	return func(o *Options) { o.Attacher = a }
}
