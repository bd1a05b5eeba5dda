// Package tasks turns catalog links into matched and downloaded audio with real-time progress reporting.
//
// # Pipeline
//
// A [Pipeline] runs one link through these stages:
//
//  1. Parse the link into a [models.ResourceRef]
//  2. Fetch the display name and the "artist - title" list concurrently
//     - A failed name lookup falls back to [FallbackName]
//     - A failed or empty listing aborts the link
//  3. [Pipeline.MatchAll] searches a video for every title on a bounded pool
//  4. [Pipeline.DownloadAll] saves every match under [Destination] on a second pool,
//     skipping files that already exist
//
// [Pipeline.Resolve] stops after stage 3 and is what the HTTP playlist endpoint uses.
// [Pipeline.Process] runs all four.
//
// # Worker Pools
//
// [RunPool] is the generic pool behind both stages. Results come back in input order
// regardless of completion order, and one failed item never stops the others.
//
// # Progress Reporting
//
// A [ProgressUpdate] carries the phase, step counters and an optional result for UI rendering.
//
// Per-item updates use select with default, so a slow consumer sees gaps in Step rather
// than stalling workers. Phase boundaries (the Step 0 update of a pool, the name, the
// listing and [Finished]) always arrive: they wait for the consumer until the context is done.
package tasks
