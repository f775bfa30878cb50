package chatstream

import "log/slog"

const defaultReadSize = 4 * 1024

// Option configures a Decoder created with New.
type Option func(*Decoder)

// WithLogger sets the logger used for debug output about dropped and
// malformed frames. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDiscardTrailing makes Finish drop a trailing line that was never
// terminated by a newline instead of dispatching it as a final frame.
func WithDiscardTrailing() Option {
	return func(d *Decoder) {
		d.discardTrailing = true
	}
}

// WithReadSize sets the buffer size used by Decode for each read.
func WithReadSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.readSize = n
		}
	}
}
