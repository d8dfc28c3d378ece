// Package progress reports the three download phases — Verify, Download,
// Build — as monotonic 0-100% bars, decoupled from the fetch pool via a
// single-writer channel so percentages stay totally ordered without
// locking the hot path (spec.md §9).
package progress

import (
	"fmt"
	"io"
	"os"
)

// Phase names, in the order they run.
const (
	Verify   = "Verify"
	Download = "Download"
	Build    = "Build"
)

const barWidth = 50

type update struct {
	phase string
	pct   int
}

// Reporter serializes progress updates from any number of goroutines into
// a single writer goroutine.
type Reporter struct {
	updates     chan update
	done        chan struct{}
	last        map[string]int
	sink        io.Writer
	interactive bool
}

// New creates a Reporter writing to w. interactive selects between a
// redrawn 3-line bar display and a one-line-per-1%-delta stream, matching
// spec.md §6's distinction between interactive and non-interactive sinks.
func New(w io.Writer, interactive bool) *Reporter {
	r := &Reporter{
		updates:     make(chan update, 64),
		done:        make(chan struct{}),
		last:        map[string]int{Verify: -1, Download: -1, Build: -1},
		sink:        w,
		interactive: interactive,
	}
	go r.run()
	return r
}

// NewForStdout chooses interactivity based on whether stdout is a terminal,
// the standard os.ModeCharDevice idiom (no third-party TTY-detection
// library appears anywhere in the retrieved pack).
func NewForStdout() *Reporter {
	interactive := false
	if info, err := os.Stdout.Stat(); err == nil {
		interactive = info.Mode()&os.ModeCharDevice != 0
	}
	return New(os.Stdout, interactive)
}

// Report clamps pct to [0,100] and to monotonic non-decreasing per phase,
// then enqueues it for the writer goroutine.
func (r *Reporter) Report(phase string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	select {
	case r.updates <- update{phase: phase, pct: pct}:
	case <-r.done:
	}
}

// Close stops the writer goroutine.
func (r *Reporter) Close() {
	close(r.updates)
	<-r.done
}

func (r *Reporter) run() {
	defer close(r.done)
	for u := range r.updates {
		if u.pct <= r.last[u.phase] && u.pct != 100 {
			continue
		}
		if u.pct < r.last[u.phase] {
			continue
		}
		r.last[u.phase] = u.pct
		r.render(u.phase, u.pct)
	}
}

func (r *Reporter) render(phase string, pct int) {
	if r.interactive {
		filled := barWidth * pct / 100
		bar := make([]byte, barWidth)
		for i := range bar {
			if i < filled {
				bar[i] = '='
			} else {
				bar[i] = ' '
			}
		}
		fmt.Fprintf(r.sink, "\r%-8s [%s] %3d%%", phase, bar, pct)
		if pct == 100 {
			fmt.Fprintln(r.sink)
		}
		return
	}
	fmt.Fprintf(r.sink, "%-8s %3d%%\n", phase, pct)
}
