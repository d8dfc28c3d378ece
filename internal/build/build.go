// Package build implements the Build phase: concatenating per-segment temp
// files into one output in strict index order (spec.md §4.7), or renaming
// them to stable per-segment files when merge=false.
package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/fetchpool"
	"github.com/tunein/hls-downloader/internal/progress"
)

// OutputPath appends ".ts" when path has no extension, per spec.md §4.7.
func OutputPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".ts"
	}
	return path
}

// Concatenate appends each job's temp file to outputPath in index order,
// deleting each temp as it is consumed. On any failure the partial output
// is removed and BUILD_FAILED is returned.
func Concatenate(jobs []*fetchpool.Job, outputPath string, reporter *progress.Reporter) error {
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return hlserr.New(hlserr.BuildFailed, "failed to open output file", err)
	}

	byIndex := make(map[int]*fetchpool.Job, len(jobs))
	for _, j := range jobs {
		byIndex[j.Index] = j
	}

	for i := 0; i < len(jobs); i++ {
		job, ok := byIndex[i]
		if !ok {
			out.Close()
			os.Remove(outputPath)
			return hlserr.New(hlserr.BuildFailed, fmt.Sprintf("missing segment %d in build order", i), nil)
		}

		if err := appendAndRemove(out, job.TempPath); err != nil {
			out.Close()
			os.Remove(outputPath)
			return hlserr.New(hlserr.BuildFailed, fmt.Sprintf("failed to append segment %d", i), err)
		}

		if reporter != nil {
			reporter.Report(progress.Build, (i+1)*100/len(jobs))
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return hlserr.New(hlserr.BuildFailed, "failed to close output file", err)
	}
	return nil
}

func appendAndRemove(out *os.File, tempPath string) error {
	in, err := os.Open(tempPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		in.Close()
		return err
	}
	in.Close()
	return os.Remove(tempPath)
}

// RenameAll materializes each job's temp file as a stable
// outputDir/<base>.<index>.ts path, retaining all of them (merge=false).
func RenameAll(jobs []*fetchpool.Job, outputDir, base string) error {
	for _, job := range jobs {
		final := filepath.Join(outputDir, fmt.Sprintf("%s.%d.ts", base, job.Index))
		if err := os.Rename(job.TempPath, final); err != nil {
			return hlserr.New(hlserr.BuildFailed, fmt.Sprintf("failed to finalize segment %d", job.Index), err)
		}
	}
	return nil
}
