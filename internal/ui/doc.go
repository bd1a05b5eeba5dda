// Package ui renders pipeline progress in the terminal.
//
// A [Tracker] consumes [tasks.ProgressUpdate] values for one link. Match and download
// phases drive a [progressbar.ProgressBar]; misses and failures are printed as status
// lines styled with the [Palette].
//
// Per-item updates may be dropped, so the bar is always set to the absolute Step of the
// latest update rather than incremented. Each phase starts with a Step 0 update.
package ui
