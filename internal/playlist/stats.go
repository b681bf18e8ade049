package playlist

import (
	"os"
	"path/filepath"
	"time"
)

// Stats is cached metadata about one pipeline reference. It is computed when
// the reference is registered (add, set, or load) and never refreshed on
// read, so it reflects the file system at registration time.
type Stats struct {
	// Pipeline is the canonical reference the stats describe.
	Pipeline string `json:"pipeline"`
	// Name is the display name, the final path segment.
	Name string `json:"name"`
	// Exists reports whether a file existed at the path when checked.
	Exists bool `json:"exists"`
	// ModifiedAt is the last modification time. It is the zero time
	// whenever Exists is false.
	ModifiedAt time.Time `json:"modifiedAt,omitzero"`
}

// newStats stats the reference on disk and derives the display name.
func newStats(reference string) Stats {
	st := Stats{
		Pipeline: reference,
		Name:     filepath.Base(reference),
	}
	info, err := os.Stat(reference)
	if err != nil {
		return st
	}
	st.Exists = true
	st.ModifiedAt = info.ModTime()
	return st
}
