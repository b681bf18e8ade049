package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"pipeline-player/internal/logging"
)

// Default frame geometry for synthetic runs.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// SyntheticLoader produces runs that generate frames procedurally instead
// of executing the referenced pipeline. The referenced file must exist
// (loading checks that much), but its content is never read; frame data is
// a moving gradient so playback is visibly alive.
//
// The zero value loads unbounded 640x480 runs.
type SyntheticLoader struct {
	// Width and Height of generated frames; defaults apply when zero.
	Width  int
	Height int
	// FrameCount is the number of frames per run. Zero or negative means
	// unbounded.
	FrameCount int
}

// Load validates that path exists and returns a synthetic runner for it.
func (l *SyntheticLoader) Load(ctx context.Context, path string) (Runner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pipeline file %s: %w", path, err)
	}

	width, height := l.Width, l.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	total := l.FrameCount
	if total < 0 {
		total = 0
	}

	logging.Debug("pipeline: loaded %s (synthetic %dx%d, %d frames)", path, width, height, total)
	return &syntheticRunner{
		path:   path,
		width:  width,
		height: height,
		total:  total,
	}, nil
}

// syntheticRunner generates gradient frames until its frame limit runs
// out. Like every Runner it expects a single caller and does no locking.
type syntheticRunner struct {
	path   string
	width  int
	height int
	total  int
	seq    uint64
	closed bool
}

func (r *syntheticRunner) Step(ctx context.Context) (Result, error) {
	if r.closed {
		return Result{}, ErrRunnerClosed
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if r.total > 0 && r.seq >= uint64(r.total) {
		return Result{Done: true}, nil
	}

	frame := Frame{
		Seq:       r.seq,
		Timestamp: time.Now(),
		Width:     r.width,
		Height:    r.height,
		Data:      gradient(r.width, r.height, r.seq),
		TraceID:   uuid.New().String(),
	}
	r.seq++
	return Result{Frame: frame}, nil
}

func (r *syntheticRunner) TotalFrames() int {
	if r.total <= 0 {
		return -1
	}
	return r.total
}

func (r *syntheticRunner) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	logging.Debug("pipeline: closed %s after %d frames", r.path, r.seq)
	return nil
}

// gradient renders a diagonal RGB ramp shifted by seq, so consecutive
// frames differ in a deterministic way.
func gradient(width, height int, seq uint64) []byte {
	data := make([]byte, width*height*3)
	shift := int(seq)
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[i] = byte(x + shift)
			data[i+1] = byte(y + shift)
			data[i+2] = byte(shift)
			i += 3
		}
	}
	return data
}
