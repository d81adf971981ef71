// Package store provides the SQLite build manifest.
//
// Every successful build can be recorded with the files it wrote:
//   - Builds: one row per build, ordered by a logical seq
//   - Outputs: the pages and assets a build wrote, unique per (build, path)
//   - Recordings: each published recording token, recorded once across builds
//     together with the build that first published it
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Queries order by seq or path with COLLATE BINARY so listings are stable
// across runs.
package store
