package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrRunnerClosed indicates Step was called on a runner after Close.
var ErrRunnerClosed = errors.New("pipeline runner is closed")

// Frame is a single decoded video frame produced by a pipeline run.
type Frame struct {
	// Seq is the monotonic sequence number within one run, starting at 0.
	Seq uint64
	// Timestamp is when the frame was produced.
	Timestamp time.Time
	// Width in pixels.
	Width int
	// Height in pixels.
	Height int
	// Data holds RGB24 pixel data, Width*Height*3 bytes.
	Data []byte
	// TraceID identifies the frame across the player for debugging.
	TraceID string
}

// Result is the outcome of a single pipeline step: either one frame, or
// Done set with a zero frame once the source is exhausted.
type Result struct {
	Frame Frame
	Done  bool
}

// Runner executes one loaded pipeline and yields frames on demand. A
// runner belongs to a single caller; implementations do not lock.
type Runner interface {
	// Step advances the pipeline by one frame. It returns Done once the
	// source is exhausted, and ErrRunnerClosed after Close.
	Step(ctx context.Context) (Result, error)
	// TotalFrames returns the number of frames the run will produce, or
	// -1 when the source is unbounded or the count is unknown.
	TotalFrames() int
	// Close releases the run's resources. Further Step calls fail.
	Close() error
}

// Loader turns a pipeline file reference into a running pipeline.
type Loader interface {
	Load(ctx context.Context, path string) (Runner, error)
}
