package hls

import "github.com/tunein/hls-downloader/hlserr"

// defaults mirror spec.md §6.
const (
	defaultMaxThreads      = 10
	defaultDebugPath       = "debug.log"
	defaultSkipSpaceCheck  = false
	defaultDebug           = false
)

// Option configures a Downloader at construction time. Setters on
// Downloader itself (SetMaxThreads, SetDebug, ...) replace the dynamic
// property accessors of the original source per spec.md §9 — both paths
// validate the same way.
type Option func(*Downloader) error

// WithMaxThreads overrides the default worker-pool size.
func WithMaxThreads(n int) Option {
	return func(d *Downloader) error { return d.SetMaxThreads(n) }
}

// WithSkipSpaceCheck disables the Space Guard preflight.
func WithSkipSpaceCheck(skip bool) Option {
	return func(d *Downloader) error { d.skipSpaceCheck = skip; return nil }
}

// WithDebug enables structured diagnostic logging to the debug sink.
func WithDebug(debug bool) Option {
	return func(d *Downloader) error { d.debug = debug; return nil }
}

// WithDebugPath overrides where diagnostic records are appended.
func WithDebugPath(path string) Option {
	return func(d *Downloader) error {
		if path == "" {
			return hlserr.New(hlserr.InvalidConfig, "debug path must not be empty", nil)
		}
		d.debugPath = path
		return nil
	}
}

// Input returns the configured playlist location.
func (d *Downloader) Input() string { return d.input }

// SetInput updates the playlist location for the next invocation.
func (d *Downloader) SetInput(input string) error {
	if input == "" {
		return hlserr.New(hlserr.InvalidConfig, "input must not be empty", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.input = input
	return nil
}

// Output returns the configured output path (without the implicit .ts).
func (d *Downloader) Output() string { return d.output }

// SetOutput updates the output path for the next invocation.
func (d *Downloader) SetOutput(output string) error {
	if output == "" {
		return hlserr.New(hlserr.InvalidConfig, "output must not be empty", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = output
	return nil
}

// SkipSpaceCheck reports whether the Space Guard preflight is skipped.
func (d *Downloader) SkipSpaceCheck() bool { return d.skipSpaceCheck }

// SetSkipSpaceCheck updates the flag for the next invocation.
func (d *Downloader) SetSkipSpaceCheck(skip bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.skipSpaceCheck = skip
}

// Debug reports whether diagnostic logging is enabled.
func (d *Downloader) Debug() bool { return d.debug }

// SetDebug toggles diagnostic logging. Takes effect on the next invocation.
func (d *Downloader) SetDebug(debug bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debug = debug
}

// DebugPath returns where diagnostic records are appended.
func (d *Downloader) DebugPath() string { return d.debugPath }

// SetDebugPath updates the debug sink path.
func (d *Downloader) SetDebugPath(path string) error {
	if path == "" {
		return hlserr.New(hlserr.InvalidConfig, "debug path must not be empty", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debugPath = path
	return nil
}

// MaxThreads returns the configured worker-pool bound.
func (d *Downloader) MaxThreads() int { return d.maxThreads }

// SetMaxThreads validates and updates the worker-pool bound; a non-positive
// value fails with INVALID_CONFIG per spec.md §6.
func (d *Downloader) SetMaxThreads(n int) error {
	if n <= 0 {
		return hlserr.New(hlserr.InvalidConfig, "maxThreads must be positive", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxThreads = n
	return nil
}

// IsDownloadComplete reports whether the most recent invocation finished
// successfully.
func (d *Downloader) IsDownloadComplete() bool { return d.isDownloadComplete }

// State returns the current lifecycle state.
func (d *Downloader) State() State { return d.state }
