package player

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"pipeline-player/internal/history"
	"pipeline-player/internal/logging"
	"pipeline-player/internal/metrics"
	"pipeline-player/internal/pipeline"
	"pipeline-player/internal/playlist"
)

// ErrNoPlaylist indicates a playlist operation on a session built
// without a playlist store.
var ErrNoPlaylist = errors.New("no playlist attached")

// DefaultFPS is the tick rate used when the config gives none.
const DefaultFPS = 60

// recordTimeout caps how long a run record may block the tick loop.
const recordTimeout = 5 * time.Second

// State enumerates what the session is doing between ticks.
type State int

const (
	// StateIdle means no pipeline is executing and playback is stopped.
	// Stepping, seeking, and zooming operate on the frame buffer.
	StateIdle State = iota
	// StateRunning means a pipeline is executing and buffering frames.
	StateRunning
	// StatePlayback means buffered frames are replaying at the tick rate.
	StatePlayback
)

// String returns the state name used in logs and the status API.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePlayback:
		return "playback"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Zoom steps offered to the display.
var zooms = [...]float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0, 2.5, 3.0}

// zoomDefaultIdx selects 1.0 in the zooms table.
const zoomDefaultIdx = 2

// RunRecorder persists finished pipeline runs. *history.Ledger satisfies
// it; a nil recorder disables run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run history.Run) error
}

// Config carries the collaborators and initial settings for a Session.
type Config struct {
	// Loader turns pipeline file references into runners. Required.
	Loader pipeline.Loader
	// Display receives frames and UI state changes. Nil means NopDisplay.
	Display Display
	// Recorder persists finished runs. Nil disables run history.
	Recorder RunRecorder
	// Playlist is the store this session owns. Other goroutines reach
	// it through the session's playlist methods only. Optional.
	Playlist *playlist.Store
	// Pipeline optionally names a pipeline file to execute on the first
	// tick, matching launch with a pipeline argument.
	Pipeline string
	// FPS is the tick rate. Values <= 0 fall back to DefaultFPS.
	FPS int
	// MaxIterations ends a run as completed after this many frames
	// when > 0.
	MaxIterations int
}

// Session drives the player state machine: it executes pipeline files,
// buffers the frames they produce, and replays or steps through the
// buffer on demand. All mutations happen on the tick loop goroutine; the
// mutex exists because the status API and the metrics collector read
// snapshots concurrently.
type Session struct {
	mu       sync.Mutex
	loader   pipeline.Loader
	display  Display
	recorder RunRecorder
	store    *playlist.Store
	fps      int
	maxIter  int

	state    State
	pipeline string
	lastErr  string

	// Current run, nil between runs.
	runner     pipeline.Runner
	runID      string
	runStarted time.Time
	runSource  string
	stopReq    bool

	// Frames buffered by the current or last run.
	frames   []pipeline.Frame
	frameIdx int

	zoomIdx int
}

// New builds a Session from cfg. When cfg.Pipeline is set the session
// starts in StateRunning and the first tick loads and executes it.
func New(cfg Config) (*Session, error) {
	if cfg.Loader == nil {
		return nil, errors.New("player: config needs a pipeline loader")
	}

	display := cfg.Display
	if display == nil {
		display = NopDisplay{}
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}

	s := &Session{
		loader:   cfg.Loader,
		display:  display,
		recorder: cfg.Recorder,
		store:    cfg.Playlist,
		fps:      fps,
		maxIter:  cfg.MaxIterations,
		state:    StateIdle,
		frameIdx: -1,
		zoomIdx:  zoomDefaultIdx,
	}
	if cfg.Pipeline != "" {
		s.pipeline = cfg.Pipeline
		s.state = StateRunning
	}

	metrics.SessionState.Set(float64(s.state))
	metrics.SessionZoomFactor.Set(zooms[s.zoomIdx])
	return s, nil
}

// Run ticks the session at the configured rate until ctx is cancelled.
// On cancellation an executing run is finished as stopped so it still
// reaches the recorder.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	logging.Info("Player loop started at %d fps", s.fps)
	for {
		select {
		case <-ctx.Done():
			s.shutdown(ctx)
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances the session by one timer period. Exported so tests and
// alternative frontends can drive the loop directly.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		s.runTick(ctx)
	case StatePlayback:
		s.playbackTick()
	}
}

// runTick starts the queued pipeline or advances it one step.
// Caller holds mu.
func (s *Session) runTick(ctx context.Context) {
	if s.runner == nil {
		s.startRun(ctx)
		return
	}
	if s.stopReq {
		s.finishRun(ctx, history.StatusStopped, nil)
		return
	}

	start := time.Now()
	res, err := s.runner.Step(ctx)
	recordStep(start, err)

	switch {
	case errors.Is(err, context.Canceled):
		s.finishRun(ctx, history.StatusStopped, nil)
	case err != nil:
		s.display.SetStatus(fmt.Sprintf("pipeline failed: %v", err))
		s.finishRun(ctx, history.StatusFailed, err)
	case res.Done:
		s.finishRun(ctx, history.StatusCompleted, nil)
	default:
		s.captureFrame(res.Frame)
		if s.maxIter > 0 && len(s.frames) >= s.maxIter {
			logging.Info("Stopping pipeline after %d iterations", s.maxIter)
			s.finishRun(ctx, history.StatusCompleted, nil)
		}
	}
}

// playbackTick replays the next buffered frame, stopping at the end.
// Caller holds mu.
func (s *Session) playbackTick() {
	if s.frameIdx+1 >= len(s.frames) {
		s.stopPlayback()
		return
	}
	s.selectFrame(s.frameIdx + 1)
}

// startRun loads the queued pipeline reference and begins a run. The
// first step happens on the next tick. Caller holds mu.
func (s *Session) startRun(ctx context.Context) {
	ref := s.pipeline
	logging.Info("Starting pipeline %s", ref)

	s.runID = uuid.New().String()
	s.runStarted = time.Now()
	s.runSource = ""
	s.lastErr = ""

	runner, err := s.loader.Load(ctx, ref)
	if err != nil {
		logging.Error("Failed to load pipeline %s: %v", ref, err)
		s.display.SetStatus(fmt.Sprintf("failed to load %s: %v", ref, err))
		s.finishRun(ctx, history.StatusFailed, err)
		return
	}

	s.runner = runner
	s.stopReq = false
	s.frames = nil
	s.frameIdx = -1
	metrics.SessionFramesBuffered.Set(0)

	s.display.SetTitle("Running " + filepath.Base(ref))
	s.display.SetStatus(ref)
	s.display.SetPlaying(true)
	s.display.SetProgress(0, runner.TotalFrames())
}

// finishRun closes the active runner, records the outcome, and returns
// the session to idle. The buffer is kept for stepping and playback.
// Caller holds mu.
func (s *Session) finishRun(ctx context.Context, status history.RunStatus, cause error) {
	if s.runner != nil {
		if err := s.runner.Close(); err != nil {
			logging.Error("Failed to close pipeline runner: %v", err)
		}
		s.runner = nil
	}
	s.stopReq = false

	metrics.PipelineRunsTotal.WithLabelValues(string(status)).Inc()

	run := history.Run{
		ID:        s.runID,
		Pipeline:  s.pipeline,
		Source:    s.runSource,
		StartedAt: s.runStarted,
		EndedAt:   time.Now(),
		Frames:    uint64(len(s.frames)),
		Status:    status,
	}
	if cause != nil {
		run.Error = cause.Error()
		s.lastErr = cause.Error()
	}
	if s.recorder != nil {
		// Recording must survive a cancelled tick context during shutdown.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := s.recorder.RecordRun(recordCtx, run); err != nil {
			logging.Error("Failed to record run %s: %v", run.ID, err)
		}
	}

	logging.Info("Pipeline %s %s after %d frames", s.pipeline, status, len(s.frames))

	s.display.SetPlaying(false)
	s.display.SetTitle(s.idleTitle())
	s.display.SetProgress(len(s.frames), len(s.frames))
	s.setState(StateIdle)
}

// captureFrame buffers one produced frame and shows it. Caller holds mu.
func (s *Session) captureFrame(f pipeline.Frame) {
	if len(s.frames) == 0 {
		s.runSource = fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	s.frames = append(s.frames, f)
	s.frameIdx = len(s.frames) - 1
	metrics.FramesCapturedTotal.Inc()
	metrics.SessionFramesBuffered.Set(float64(len(s.frames)))
	s.showCurrent()
	s.display.SetProgress(len(s.frames), s.totalFrames())
}

// PlayStop toggles between executing, replaying, and idle: a running
// pipeline is asked to stop, active playback stops, and an idle session
// starts replaying the buffer.
func (s *Session) PlayStop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		if s.runner == nil {
			// Queued but never started; nothing to record.
			s.setState(StateIdle)
			return
		}
		// The loop observes the flag on its next tick and finishes the run.
		s.stopReq = true
	case StatePlayback:
		s.stopPlayback()
	case StateIdle:
		s.startPlayback()
	}
}

// startPlayback begins replaying buffered frames, rewinding first when
// the cursor sits at the end, then advances once immediately.
// Caller holds mu.
func (s *Session) startPlayback() {
	if len(s.frames) == 0 {
		return
	}
	if s.frameIdx+1 >= len(s.frames) {
		s.selectFrame(0)
	}
	s.display.SetTitle("Playing " + filepath.Base(s.pipeline))
	s.display.SetPlaying(true)
	s.setState(StatePlayback)
	s.playbackTick()
}

// stopPlayback ends replay and returns to idle. Caller holds mu.
func (s *Session) stopPlayback() {
	s.display.SetPlaying(false)
	s.display.SetTitle(s.idleTitle())
	s.setState(StateIdle)
}

// PlayPipeline queues the referenced pipeline file for execution on the
// next tick, replacing whatever the session was doing. An executing run
// is finished as stopped first.
func (s *Session) PlayPipeline(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		if s.runner != nil {
			s.finishRun(context.Background(), history.StatusStopped, nil)
		}
	case StatePlayback:
		s.stopPlayback()
	}

	s.pipeline = reference
	s.runner = nil
	s.setState(StateRunning)
	logging.Info("Queued pipeline %s", reference)
}

// StepForward advances one buffered frame. It reports false while a
// pipeline executes, during playback, or at the end of the buffer.
func (s *Session) StepForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || s.frameIdx+1 >= len(s.frames) {
		return false
	}
	s.selectFrame(s.frameIdx + 1)
	return true
}

// StepBackward moves one buffered frame back. It reports false while a
// pipeline executes, during playback, or at the start of the buffer.
func (s *Session) StepBackward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || s.frameIdx <= 0 {
		return false
	}
	s.selectFrame(s.frameIdx - 1)
	return true
}

// JumpFirst selects the first buffered frame.
func (s *Session) JumpFirst() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || len(s.frames) == 0 {
		return
	}
	s.selectFrame(0)
}

// JumpLast selects the last buffered frame.
func (s *Session) JumpLast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || len(s.frames) == 0 {
		return
	}
	s.selectFrame(len(s.frames) - 1)
}

// Seek selects the buffered frame at index, clamping to the buffer
// bounds. Seeking does nothing while a pipeline executes, during
// playback, or with an empty buffer.
func (s *Session) Seek(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || len(s.frames) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.frames) {
		index = len(s.frames) - 1
	}
	s.selectFrame(index)
}

// ZoomIn selects the next larger zoom step.
func (s *Session) ZoomIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoom(s.zoomIdx + 1)
}

// ZoomOut selects the next smaller zoom step.
func (s *Session) ZoomOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoom(s.zoomIdx - 1)
}

// ZoomReset returns the zoom to 1.0.
func (s *Session) ZoomReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setZoom(zoomDefaultIdx)
}

// ZoomFactor returns the zoom currently applied to displayed frames.
func (s *Session) ZoomFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return zooms[s.zoomIdx]
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pipeline returns the most recently queued pipeline reference.
func (s *Session) Pipeline() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}

// Playlist returns a stats snapshot of the owned playlist in insertion
// order, or nil when no playlist is attached.
func (s *Session) Playlist() []playlist.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Entries()
}

// AddPipeline registers a pipeline file in the owned playlist.
func (s *Session) AddPipeline(reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNoPlaylist
	}
	return s.store.Add(reference)
}

// RemovePipeline drops a pipeline file from the owned playlist.
func (s *Session) RemovePipeline(reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNoPlaylist
	}
	return s.store.Remove(reference)
}

// SavePlaylist persists the owned playlist.
func (s *Session) SavePlaylist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return ErrNoPlaylist
	}
	return s.store.Save()
}

// Snapshot is a point-in-time view of the session for the status API.
type Snapshot struct {
	State          string  `json:"state"`
	Pipeline       string  `json:"pipeline,omitempty"`
	FrameIndex     int     `json:"frameIndex"`
	FramesBuffered int     `json:"framesBuffered"`
	TotalFrames    int     `json:"totalFrames"`
	Zoom           float64 `json:"zoom"`
	LastError      string  `json:"lastError,omitempty"`
}

// Snapshot reports the current session state for the status API.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:          s.state.String(),
		Pipeline:       s.pipeline,
		FrameIndex:     s.frameIdx,
		FramesBuffered: len(s.frames),
		TotalFrames:    s.totalFrames(),
		Zoom:           zooms[s.zoomIdx],
		LastError:      s.lastErr,
	}
}

// GetStats implements metrics.StatsProvider for the collector.
func (s *Session) GetStats() metrics.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return metrics.Stats{
		State:          int(s.state),
		FramesBuffered: len(s.frames),
		ZoomFactor:     zooms[s.zoomIdx],
	}
}

// shutdown settles the session when the run loop exits. Queued runs that
// never started are dropped without a history record.
func (s *Session) shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		if s.runner != nil {
			s.finishRun(ctx, history.StatusStopped, nil)
		} else {
			s.setState(StateIdle)
		}
	case StatePlayback:
		s.stopPlayback()
	}
	logging.Info("Player loop stopped")
}

// selectFrame moves the cursor and refreshes the display. Caller holds mu.
func (s *Session) selectFrame(index int) {
	s.frameIdx = index
	s.showCurrent()
	s.display.SetProgress(s.frameIdx+1, len(s.frames))
}

// showCurrent hands the selected frame to the display. Caller holds mu.
func (s *Session) showCurrent() {
	if s.frameIdx < 0 || s.frameIdx >= len(s.frames) {
		return
	}
	s.display.ShowFrame(s.frames[s.frameIdx], zooms[s.zoomIdx])
	metrics.FramesDisplayedTotal.Inc()
}

// setZoom clamps idx to the zoom table and redraws the selected frame at
// the new factor. Caller holds mu.
func (s *Session) setZoom(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(zooms) {
		idx = len(zooms) - 1
	}
	if idx == s.zoomIdx {
		return
	}
	s.zoomIdx = idx
	metrics.SessionZoomFactor.Set(zooms[idx])
	logging.Debug("Zoom set to %.2f", zooms[idx])
	s.showCurrent()
}

// setState transitions the state machine and mirrors it to the gauge.
// Caller holds mu.
func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	logging.Debug("Session state %s -> %s", s.state, st)
	s.state = st
	metrics.SessionState.Set(float64(st))
}

// totalFrames reports the active run's expected frame count, or the
// buffer length between runs. -1 means unknown. Caller holds mu.
func (s *Session) totalFrames() int {
	if s.runner != nil {
		return s.runner.TotalFrames()
	}
	return len(s.frames)
}

// idleTitle is the header text shown between runs. Caller holds mu.
func (s *Session) idleTitle() string {
	if s.pipeline == "" {
		return ""
	}
	return filepath.Base(s.pipeline)
}

// recordStep tracks one pipeline step outcome.
func recordStep(start time.Time, err error) {
	metrics.PipelineStepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PipelineStepErrors.Inc()
	}
}
