package player

import "pipeline-player/internal/pipeline"

// Display is the surface the session renders to. The desktop frontend
// implements it with real widgets; headless runs use NopDisplay.
type Display interface {
	// ShowFrame renders one frame scaled by zoom.
	ShowFrame(frame pipeline.Frame, zoom float64)
	// SetProgress moves the frame slider. A total of -1 means the run
	// length is unknown and the bar should be indeterminate.
	SetProgress(current, total int)
	// SetPlaying switches the play/stop control to the playing look.
	SetPlaying(playing bool)
	// SetTitle updates the header text.
	SetTitle(title string)
	// SetStatus updates the transient status line.
	SetStatus(text string)
}

// NopDisplay discards all display output.
type NopDisplay struct{}

var _ Display = NopDisplay{}

// ShowFrame implements Display.
func (NopDisplay) ShowFrame(pipeline.Frame, float64) {}

// SetProgress implements Display.
func (NopDisplay) SetProgress(int, int) {}

// SetPlaying implements Display.
func (NopDisplay) SetPlaying(bool) {}

// SetTitle implements Display.
func (NopDisplay) SetTitle(string) {}

// SetStatus implements Display.
func (NopDisplay) SetStatus(string) {}
