// Package playlist maintains the ordered list of pipeline files the player
// can run, together with cached file stats for each entry.
//
// The list is mirrored to a single YAML document at
// <base>/.peekingduck/playlist.yaml:
//
//	playlist:
//	  - demo/object_detection.yml
//	  - demo/pose_estimation.yml
//
// Only the references are persisted. Stats (existence, modification time)
// are recomputed from the file system on load and on Add/Set, never on
// read, so a caller always sees the file as it was when the entry was
// registered.
//
// Core properties:
//
//   - References keep insertion order and stay unique; Add rejects
//     duplicates, Set intentionally does not (see Set).
//   - Lookup by reference (Contains, StatsFor) is O(1) against the stats
//     cache; Remove is O(n) over the ordered slice.
//   - Save replaces the file atomically via a temp file and rename, so an
//     interrupted write never leaves a partial document behind.
//   - Reload is transactional: on a malformed file the in-memory state is
//     left untouched and ErrMalformedPlaylist is returned.
//
// A Store is built for a single in-process owner and does no locking.
// Concurrent use, or another process editing the file underneath it, is
// not guarded against.
package playlist
