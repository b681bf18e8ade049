package playlist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pipeline-player/internal/logging"
	"pipeline-player/internal/metrics"
)

// playlistFile is the on-disk document shape: a single mapping with one
// "playlist" key holding the ordered reference list. Stats are never
// persisted; they are recomputed on load.
type playlistFile struct {
	Playlist []string `yaml:"playlist"`
}

// Reload reads the playlist file and replaces the in-memory state. A
// missing file resets the store to empty. A file that is not a mapping with
// a "playlist" key holding a sequence of scalar strings, or whose entries
// collapse to duplicate canonical forms, fails with ErrMalformedPlaylist
// and leaves the in-memory state untouched.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.refs = nil
			s.stats = make(map[string]Stats)
			metrics.PlaylistEntries.Set(0)
			logging.Debug("playlist: no file at %s, starting empty", s.path)
			return nil
		}
		recordOp("load", err)
		return fmt.Errorf("reading playlist file %s: %w", s.path, err)
	}

	refs, err := parsePlaylist(data)
	if err != nil {
		recordOp("load", err)
		return fmt.Errorf("%s: %w", s.path, err)
	}

	stats := make(map[string]Stats, len(refs))
	for _, ref := range refs {
		stats[ref] = newStats(ref)
	}

	s.refs = refs
	s.stats = stats
	recordOp("load", nil)
	metrics.PlaylistEntries.Set(float64(len(s.refs)))
	logging.Debug("playlist: loaded %d entries from %s", len(s.refs), s.path)
	return nil
}

// parsePlaylist validates the document shape node by node so that a missing
// key, a non-mapping root, a non-sequence value, and a non-scalar entry are
// all distinguishable from plain YAML syntax errors in the message.
func parsePlaylist(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlaylist, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedPlaylist)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformedPlaylist)
	}

	var seq *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "playlist" {
			seq = root.Content[i+1]
			break
		}
	}
	if seq == nil {
		return nil, fmt.Errorf("%w: missing \"playlist\" key", ErrMalformedPlaylist)
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: \"playlist\" value is not a sequence", ErrMalformedPlaylist)
	}

	refs := make([]string, 0, len(seq.Content))
	seen := make(map[string]struct{}, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
			return nil, fmt.Errorf("%w: playlist entry %d is not a string", ErrMalformedPlaylist, len(refs))
		}
		ref := canonical(item.Value)
		if _, dup := seen[ref]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrMalformedPlaylist, ref)
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Save writes the reference list (never the stats cache) under the
// "playlist" key, replacing the file atomically: the document is written to
// a temp file in the same directory, synced, then renamed over the target.
// Any failure surfaces as ErrPersistFailed; the file either keeps its
// previous content or holds the new document in full.
func (s *Store) Save() error {
	start := time.Now()

	refs := make([]string, len(s.refs))
	copy(refs, s.refs)
	data, err := yaml.Marshal(playlistFile{Playlist: refs})
	if err != nil {
		recordOp("save", err)
		return fmt.Errorf("%w: encoding: %w", ErrPersistFailed, err)
	}

	if err := atomicWrite(s.path, data); err != nil {
		recordOp("save", err)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	recordOp("save", nil)
	metrics.PlaylistPersistDuration.Observe(time.Since(start).Seconds())
	logging.Debug("playlist: saved %d entries to %s in %v", len(s.refs), s.path, time.Since(start))
	return nil
}

// atomicWrite writes data to a temp file in path's directory and renames it
// into place, so readers of path never observe a partial document.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".playlist-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if closeErr := tmp.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			logging.Debug("playlist: closing temp file: %v", closeErr)
		}
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			logging.Warn("playlist: leaving temp file %s: %v", tmpName, rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
