// Package pipeline defines the seam between the player and whatever
// executes a pipeline file: a Loader turns a file reference into a Runner,
// and a Runner yields Frames one Step at a time until the source is
// exhausted.
//
// The real execution engine lives outside this program. The package ships
// SyntheticLoader, which validates the reference and then generates
// gradient frames, so the player, playlist, and history layers can run
// end to end without an engine attached.
//
// Runners are single-caller objects; the player session owns exactly one
// at a time and steps it from its tick loop.
package pipeline
