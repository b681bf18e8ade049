// Package player drives the playback session: a small state machine
// that executes pipeline files, buffers the frames they produce, and
// replays or steps through the buffer on demand.
//
// A session is in one of three states. StateRunning executes the loaded
// pipeline one step per tick and buffers every frame it yields.
// StatePlayback replays buffered frames at the tick rate. StateIdle
// accepts stepping, seeking, and zoom changes on the buffer.
//
// The Run loop owns all state transitions; concurrent readers such as
// the status API and the metrics collector get consistent views through
// Snapshot and GetStats. Finished runs are handed to a RunRecorder so
// the run history outlives the session.
package player
