// Package hls resolves an HLS (HTTP Live Streaming) playlist — a URL or
// local path — classifies it as a media or master playlist, selects a
// variant when needed, fetches all referenced segments with bounded
// concurrency, and optionally concatenates them into a single output
// file.
//
// The two entry points mirror the source tool this spec distills:
// Downloader.DownloadPlaylist for media playlists and
// Downloader.DownloadMasterPlaylist for master playlists that need variant
// selection first.
package hls
