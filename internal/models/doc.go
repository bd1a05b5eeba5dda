// Package models defines the values that flow through the link resolution pipeline.
//
// A link is parsed into a [ResourceRef]. The catalog lists its titles, which become
// [TrackQuery] values indexed by position. Searching produces one [MatchResult] per
// query, and download mode produces one [DownloadOutcome] per match.
//
// Result slices are always index aligned: element i describes query i, no matter
// the order in which the work finished. Per-item failures are values (an empty
// MediaURL, a failed status) rather than missing elements.
//
// Nothing in this package is persisted.
package models
