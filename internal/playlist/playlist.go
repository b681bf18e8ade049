package playlist

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"pipeline-player/internal/logging"
	"pipeline-player/internal/metrics"
)

// Location of the playlist file beneath the base directory.
const (
	// ConfigDirName is the configuration directory created under the base
	// directory (conventionally the user home directory).
	ConfigDirName = ".peekingduck"
	// FileName is the playlist file name inside the configuration directory.
	FileName = "playlist.yaml"
)

// Sentinel errors for playlist operations.
var (
	// ErrMalformedPlaylist indicates the playlist file exists but is not a
	// mapping with a "playlist" key holding a sequence of strings.
	ErrMalformedPlaylist = errors.New("malformed playlist file")
	// ErrDuplicatePipeline indicates an added pipeline is already present.
	ErrDuplicatePipeline = errors.New("pipeline already in playlist")
	// ErrPipelineNotFound indicates the pipeline is not in the playlist.
	ErrPipelineNotFound = errors.New("pipeline not in playlist")
	// ErrIndexOutOfRange indicates an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("playlist index out of range")
	// ErrPersistFailed indicates the playlist file could not be written.
	ErrPersistFailed = errors.New("persisting playlist failed")
)

// ConfigPath returns the playlist file path for a base directory.
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, ConfigDirName, FileName)
}

// Store is an ordered collection of pipeline file references with cached
// per-reference file stats, mirrored to a single YAML file.
//
// References are stored in insertion order and kept unique. Every reference
// has exactly one Stats entry computed when the reference is registered;
// stats are never refreshed on read, so they can go stale relative to the
// file system until the reference is added or set again.
//
// A Store expects a single in-process owner and does no locking. Another
// process writing the same file is not guarded against: the last save wins
// and a load between external writes sees whatever is on disk.
type Store struct {
	path  string
	refs  []string
	stats map[string]Stats
}

// New creates a Store bound to <baseDir>/.peekingduck/playlist.yaml,
// creating the configuration directory when absent, and synchronously
// loads any existing entries. A missing playlist file yields an empty
// store; a present but wrong-shaped file fails with ErrMalformedPlaylist.
func New(baseDir string) (*Store, error) {
	path := ConfigPath(baseDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &Store{
		path:  path,
		stats: make(map[string]Stats),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the playlist file path the store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of pipeline references.
func (s *Store) Len() int {
	return len(s.refs)
}

// Add appends a pipeline reference and computes its stats. The reference is
// compared in canonical (cleaned) path form; adding one that is already
// present fails with ErrDuplicatePipeline and leaves the store unchanged.
func (s *Store) Add(reference string) error {
	ref := canonical(reference)
	if _, ok := s.stats[ref]; ok {
		err := fmt.Errorf("%w: %q", ErrDuplicatePipeline, ref)
		recordOp("add", err)
		return err
	}

	s.refs = append(s.refs, ref)
	s.stats[ref] = newStats(ref)
	recordOp("add", nil)
	metrics.PlaylistEntries.Set(float64(len(s.refs)))
	logging.Debug("playlist: added %q (%d entries)", ref, len(s.refs))
	return nil
}

// Remove deletes a pipeline reference and its stats entry. Removing a
// reference that is not present fails with ErrPipelineNotFound and leaves
// the store unchanged.
func (s *Store) Remove(reference string) error {
	ref := canonical(reference)
	if _, ok := s.stats[ref]; !ok {
		err := fmt.Errorf("%w: %q", ErrPipelineNotFound, ref)
		recordOp("remove", err)
		return err
	}

	for i, existing := range s.refs {
		if existing == ref {
			s.refs = append(s.refs[:i], s.refs[i+1:]...)
			break
		}
	}
	delete(s.stats, ref)
	recordOp("remove", nil)
	metrics.PlaylistEntries.Set(float64(len(s.refs)))
	logging.Debug("playlist: removed %q (%d entries)", ref, len(s.refs))
	return nil
}

// Get returns the reference at index, failing with ErrIndexOutOfRange when
// index is outside [0, Len()).
func (s *Store) Get(index int) (string, error) {
	if index < 0 || index >= len(s.refs) {
		return "", fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.refs))
	}
	return s.refs[index], nil
}

// Set replaces the reference at index with a new value, recomputing stats
// for the new value and discarding stats for the replaced one. It fails
// with ErrIndexOutOfRange when index is outside [0, Len()).
//
// Unlike Add, Set does not reject a value that already exists elsewhere in
// the list. Callers that need uniqueness preserved across Set must check
// Contains first.
func (s *Store) Set(index int, reference string) error {
	if index < 0 || index >= len(s.refs) {
		err := fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.refs))
		recordOp("set", err)
		return err
	}

	ref := canonical(reference)
	old := s.refs[index]
	s.refs[index] = ref
	delete(s.stats, old)
	s.stats[ref] = newStats(ref)
	recordOp("set", nil)
	logging.Debug("playlist: replaced %q with %q at index %d", old, ref, index)
	return nil
}

// Contains reports whether a reference is present, in O(1) against the
// stats cache.
func (s *Store) Contains(reference string) bool {
	_, ok := s.stats[canonical(reference)]
	return ok
}

// StatsFor returns the cached stats for a reference, failing with
// ErrPipelineNotFound when the reference is not in the store. The returned
// stats reflect the file system as of the last add/set/load of that
// reference, not the current state.
func (s *Store) StatsFor(reference string) (Stats, error) {
	st, ok := s.stats[canonical(reference)]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %q", ErrPipelineNotFound, canonical(reference))
	}
	return st, nil
}

// All returns an iterator over the references in insertion order. The
// iterator is restartable (each range starts fresh) and reads the live
// sequence: mutating the store during iteration has undefined results,
// consistent with the single-owner model.
func (s *Store) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, ref := range s.refs {
			if !yield(ref) {
				return
			}
		}
	}
}

// Entries returns a copy of the stats entries in insertion order.
func (s *Store) Entries() []Stats {
	out := make([]Stats, 0, len(s.refs))
	for _, ref := range s.refs {
		out = append(out, s.stats[ref])
	}
	return out
}

// canonical returns the form a reference is stored and compared in.
// filepath.Clean collapses redundant separators and dot segments the same
// way the player's path handling always has; note Clean("") is ".".
func canonical(reference string) string {
	return filepath.Clean(reference)
}

// recordOp tracks a playlist operation outcome.
func recordOp(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PlaylistOperationsTotal.WithLabelValues(operation, status).Inc()
}
