package hls

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/build"
	"github.com/tunein/hls-downloader/internal/fetcher"
	"github.com/tunein/hls-downloader/internal/fetchpool"
	"github.com/tunein/hls-downloader/internal/logging"
	"github.com/tunein/hls-downloader/internal/m3u8"
	"github.com/tunein/hls-downloader/internal/progress"
	"github.com/tunein/hls-downloader/internal/selector"
	"github.com/tunein/hls-downloader/internal/spaceguard"
	"github.com/tunein/hls-downloader/output"
)

// Downloader is the single entry point described in spec.md §4: it
// resolves a playlist location, classifies it, optionally selects a
// variant, fetches every referenced segment, and assembles the output.
// Concurrent calls to its Download* methods never run in parallel: mu
// serializes them.
type Downloader struct {
	mu sync.Mutex

	input  string
	output string

	maxThreads     int
	skipSpaceCheck bool
	debug          bool
	debugPath      string

	fetcher  fetcher.Fetcher
	reporter *progress.Reporter

	state              State
	isDownloadComplete bool
	lastResult         *output.Result
}

// LastResult returns the summary of the most recently completed (or
// failed) invocation, or nil if none has run yet.
func (d *Downloader) LastResult() *output.Result { return d.lastResult }

// New constructs a Downloader for input/output with the given options
// applied over spec.md §6's defaults.
func New(input, output string, opts ...Option) (*Downloader, error) {
	if input == "" {
		return nil, hlserr.New(hlserr.InvalidConfig, "input must not be empty", nil)
	}
	if output == "" {
		return nil, hlserr.New(hlserr.InvalidConfig, "output must not be empty", nil)
	}

	d := &Downloader{
		input:          input,
		output:         output,
		maxThreads:     defaultMaxThreads,
		skipSpaceCheck: defaultSkipSpaceCheck,
		debug:          defaultDebug,
		debugPath:      defaultDebugPath,
		state:          Idle,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// PlaylistOption configures a single DownloadPlaylist invocation.
type PlaylistOption func(*playlistConfig)

// MasterOption configures a single DownloadMasterPlaylist invocation,
// adding variant selection keys on top of PlaylistOption.
type MasterOption func(*masterConfig)

type playlistConfig struct {
	merge bool
}

type masterConfig struct {
	playlistConfig
	keys selector.Keys
}

func newPlaylistConfig() playlistConfig {
	return playlistConfig{merge: true}
}

// WithMerge controls whether segments are concatenated into one output
// file (default) or retained as stable per-segment files.
func WithMerge(merge bool) PlaylistOption {
	return func(c *playlistConfig) { c.merge = merge }
}

// WithMasterMerge controls merge behavior for DownloadMasterPlaylist, same
// semantics as WithMerge for DownloadPlaylist.
func WithMasterMerge(merge bool) MasterOption {
	return func(c *masterConfig) { c.merge = merge }
}

// WithName selects a variant by exact name match.
func WithName(name string) MasterOption {
	return func(c *masterConfig) { c.keys.Name = name }
}

// WithBandwidth selects a variant by exact bandwidth match.
func WithBandwidth(bandwidth string) MasterOption {
	return func(c *masterConfig) { c.keys.Bandwidth = bandwidth }
}

// WithResolution selects a variant by exact resolution match.
func WithResolution(resolution string) MasterOption {
	return func(c *masterConfig) { c.keys.Resolution = resolution }
}

// DownloadPlaylist downloads a media playlist: every #EXTINF-referenced
// segment is fetched and, unless WithMerge(false) is given, concatenated
// into the configured output in playlist order.
func (d *Downloader) DownloadPlaylist(ctx context.Context, opts ...PlaylistOption) error {
	cfg := newPlaylistConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.newLogger()
	if err != nil {
		return err
	}
	defer log.Close()
	corrID := uuid.NewString()
	log = log.WithComponent("downloader")
	log.Debug("starting media playlist download", logging.Fields{"correlation_id": corrID, "input": d.input})

	d.state = Idle
	d.isDownloadComplete = false

	doc, err := d.loadAndVerify(ctx, d.input, log)
	if err != nil {
		d.state = Failed
		return d.failEarly(err)
	}
	if doc.Kind == m3u8.Master {
		d.state = Failed
		return d.failEarly(hlserr.New(hlserr.WrongMethodMaster,
			"input is a master playlist; use DownloadMasterPlaylist", nil))
	}

	return d.runPipeline(ctx, doc, cfg, nil, log)
}

// DownloadMasterPlaylist downloads a master playlist: it selects exactly
// one variant (via WithName/WithBandwidth/WithResolution, or automatically
// when there is only one), loads that variant's media playlist, and then
// proceeds exactly as DownloadPlaylist.
func (d *Downloader) DownloadMasterPlaylist(ctx context.Context, opts ...MasterOption) error {
	cfg := masterConfig{playlistConfig: newPlaylistConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.newLogger()
	if err != nil {
		return err
	}
	defer log.Close()
	corrID := uuid.NewString()
	log = log.WithComponent("downloader")
	log.Debug("starting master playlist download", logging.Fields{"correlation_id": corrID, "input": d.input})

	d.state = Idle
	d.isDownloadComplete = false

	doc, err := d.loadAndVerify(ctx, d.input, log)
	if err != nil {
		d.state = Failed
		return d.failEarly(err)
	}
	if doc.Kind != m3u8.Master {
		d.state = Failed
		return d.failEarly(hlserr.New(hlserr.WrongMethodMedia,
			"input is not a master playlist; use DownloadPlaylist", nil))
	}

	d.state = Planning
	variants := m3u8.ParseVariants(doc)
	if len(variants) == 0 {
		d.state = Failed
		return d.failEarly(hlserr.New(hlserr.MalformedMaster, "master playlist declares no variants", nil))
	}

	variant, err := selector.Select(variants, cfg.keys)
	if err != nil {
		d.state = Failed
		log.Warn("variant selection failed", logging.Fields{"error": err.Error()})
		return d.failEarly(err)
	}
	log.Debug("variant selected", logging.Fields{"name": variant.Name, "bandwidth": variant.Bandwidth, "resolution": variant.Resolution, "uri": variant.URI})

	mediaDoc, err := d.loadAndVerify(ctx, variant.URI, log)
	if err != nil {
		d.state = Failed
		return d.failEarly(err)
	}
	if mediaDoc.Kind != m3u8.Media {
		d.state = Failed
		return d.failEarly(hlserr.New(hlserr.MalformedMaster, "selected variant is not a media playlist", nil))
	}

	return d.runPipeline(ctx, mediaDoc, cfg.playlistConfig, variant, log)
}

// loadAndVerify loads a document, classifies it, and rejects encrypted or
// unparsable input — the Verify phase of spec.md §4.8.
func (d *Downloader) loadAndVerify(ctx context.Context, location string, log *logging.Logger) (*m3u8.Document, error) {
	d.state = Verifying
	if d.reporter != nil {
		d.reporter.Report(progress.Verify, 0)
	}

	f := d.fetcherOrDefault()
	doc, err := m3u8.Load(ctx, location, f)
	if err != nil {
		log.Error(err, "failed to load playlist", logging.Fields{"location": location})
		return nil, err
	}

	if !m3u8.HasM3UHeader(doc.Lines) {
		log.Warn("playlist is missing #EXTM3U header", logging.Fields{"location": location})
	}

	if m3u8.HasEncryption(doc.Lines) {
		return nil, hlserr.New(hlserr.EncryptedUnsupported, "encrypted playlists are not supported", nil)
	}

	doc.Kind = m3u8.Classify(doc.Lines)
	if doc.Kind == m3u8.Unknown {
		return nil, hlserr.New(hlserr.NotAPlaylist, "input is not a recognizable M3U8 playlist", nil)
	}

	if d.reporter != nil {
		d.reporter.Report(progress.Verify, 100)
	}
	return doc, nil
}

// runPipeline executes Planning -> Guarding -> Downloading -> Building for
// an already-classified media document. variant is non-nil only when this
// run descended from a master playlist's variant selection.
func (d *Downloader) runPipeline(ctx context.Context, doc *m3u8.Document, cfg playlistConfig, variant *m3u8.Variant, log *logging.Logger) error {
	start := time.Now()
	res := &output.Result{Input: d.input, Output: d.output, Merged: cfg.merge}
	if variant != nil {
		res.Variant = variant.Name
		res.Bandwidth = variant.Bandwidth
		res.Resolution = variant.Resolution
	}
	fail := func(err error) error {
		res.Duration = time.Since(start)
		if herr, ok := err.(*hlserr.Error); ok {
			res.ErrorKind = string(herr.Kind)
		}
		res.ErrorMsg = err.Error()
		d.lastResult = res
		return err
	}

	f := d.fetcherOrDefault()
	reporter := d.reporterOrDefault()

	d.state = Planning
	plan := m3u8.ParsePlan(doc)
	if len(plan.Segments) == 0 {
		d.state = Failed
		return fail(hlserr.New(hlserr.MalformedMaster, "media playlist has no segments", nil))
	}
	res.Segments = len(plan.Segments)

	outputDir := filepath.Dir(d.output)
	if outputDir == "" {
		outputDir = "."
	}
	base := filepath.Base(d.output)

	if !d.skipSpaceCheck {
		d.state = Guarding
		required, err := spaceguard.EstimateRequired(ctx, plan.Segments, f)
		if err != nil {
			d.state = Failed
			return fail(hlserr.New(hlserr.InsufficientSpace, "failed to estimate required disk space", err))
		}
		available, err := spaceguard.FreeBytes(outputDir)
		if err != nil {
			d.state = Failed
			return fail(hlserr.New(hlserr.InsufficientSpace, "failed to read available disk space", err))
		}
		if err := spaceguard.Check(required, available); err != nil {
			d.state = Failed
			log.Error(err, "space guard rejected download", logging.Fields{"required": required, "available": available})
			return fail(err)
		}
	}

	d.state = Downloading
	jobs := fetchpool.Plan(outputDir, base, plan)
	if err := fetchpool.Run(ctx, jobs, f, d.maxThreads, reporter, log); err != nil {
		d.state = Failed
		log.Error(err, "segment download failed", nil)
		return fail(err)
	}

	var totalBytes int64
	for _, j := range jobs {
		totalBytes += j.Bytes
	}
	res.Bytes = totalBytes

	d.state = Building
	if cfg.merge {
		outputPath := build.OutputPath(d.output)
		if err := build.Concatenate(jobs, outputPath, reporter); err != nil {
			d.state = Failed
			log.Error(err, "build failed", logging.Fields{"output": outputPath})
			return fail(err)
		}
	} else {
		if err := build.RenameAll(jobs, outputDir, base); err != nil {
			d.state = Failed
			log.Error(err, "build failed", nil)
			return fail(err)
		}
	}

	d.state = Done
	d.isDownloadComplete = true
	res.Success = true
	res.Duration = time.Since(start)
	d.lastResult = res
	log.Debug("download complete", logging.Fields{"segments": len(jobs)})
	return nil
}

// failEarly records a result for a failure that happened before a segment
// plan existed (verify/selection stage).
func (d *Downloader) failEarly(err error) error {
	res := &output.Result{Input: d.input, Output: d.output}
	if herr, ok := err.(*hlserr.Error); ok {
		res.ErrorKind = string(herr.Kind)
	}
	res.ErrorMsg = err.Error()
	d.lastResult = res
	return err
}

func (d *Downloader) fetcherOrDefault() fetcher.Fetcher {
	if d.fetcher != nil {
		return d.fetcher
	}
	return fetcher.NewHTTPFetcher()
}

func (d *Downloader) reporterOrDefault() *progress.Reporter {
	if d.reporter != nil {
		return d.reporter
	}
	return progress.NewForStdout()
}

func (d *Downloader) newLogger() (*logging.Logger, error) {
	l, err := logging.New(d.debug, d.debugPath)
	if err != nil {
		return nil, hlserr.New(hlserr.InvalidConfig, "failed to initialize logger", err)
	}
	return l, nil
}
