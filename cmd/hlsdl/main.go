// Command hlsdl is a thin CLI wrapper over the hls package: it downloads
// an HLS playlist (media or master) to a local file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunein/hls-downloader"
	"github.com/tunein/hls-downloader/hlserr"
	outfmt "github.com/tunein/hls-downloader/output"
)

func main() {
	input := flag.String("input", "", "playlist URL or local path (required)")
	output := flag.String("output", "", "output file path (required)")
	threads := flag.Int("threads", 10, "maximum concurrent segment fetches")
	skipSpace := flag.Bool("skip-space-check", false, "skip the disk space preflight")
	merge := flag.Bool("merge", true, "concatenate segments into one output file")
	debug := flag.Bool("debug", false, "enable structured debug logging")
	debugPath := flag.String("debug-path", "debug.log", "path for debug log records")
	name := flag.String("name", "", "variant name (master playlists only)")
	bandwidth := flag.String("bandwidth", "", "variant bandwidth (master playlists only)")
	resolution := flag.String("resolution", "", "variant resolution (master playlists only)")
	format := flag.String("format", "table", "result output format: table, json, yaml, csv")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: hlsdl -input <url-or-path> -output <file> [flags]")
		os.Exit(2)
	}

	formatter, err := outfmt.ByName(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hlsdl:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dl, err := hls.New(*input, *output,
		hls.WithMaxThreads(*threads),
		hls.WithSkipSpaceCheck(*skipSpace),
		hls.WithDebug(*debug),
		hls.WithDebugPath(*debugPath),
	)
	if err != nil {
		fail(err)
	}

	err = dl.DownloadPlaylist(ctx, hls.WithMerge(*merge))
	if err != nil && hlserr.Is(err, hlserr.WrongMethodMaster) {
		err = dl.DownloadMasterPlaylist(ctx,
			hls.WithMasterMerge(*merge),
			hls.WithName(*name),
			hls.WithBandwidth(*bandwidth),
			hls.WithResolution(*resolution),
		)
	}

	if res := dl.LastResult(); res != nil {
		rendered, ferr := formatter.Format(res, true)
		if ferr == nil {
			fmt.Println(string(rendered))
		}
	}

	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	var herr *hlserr.Error
	if errors.As(err, &herr) {
		fmt.Fprintf(os.Stderr, "hlsdl: %s: %s\n", herr.Kind, herr.Message)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "hlsdl: %v\n", err)
	os.Exit(1)
}
