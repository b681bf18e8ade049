package playlistview

import (
	"errors"
	"sort"

	"pipeline-player/internal/logging"
	"pipeline-player/internal/playlist"
)

// Markers decorating rows, the info panel, and the header.
const (
	markerExists  = "\U0001F44D" // thumbs up
	markerMissing = "\U0001F480" // skull
	markerAsc     = "⬆"     // up arrow
	markerDesc    = "⬇"     // down arrow
)

// modifiedLayout formats ModifiedAt for the info panel.
const modifiedLayout = "2006-01-02 15:04:05"

// Actions receives the playlist commands the view dispatches. Each
// method reports whether the playlist changed, which makes the view
// rebuild its rows.
type Actions interface {
	// Add registers a new pipeline; the frontend picks it, usually with
	// a file dialog.
	Add() bool
	// Delete removes the pipeline from the playlist.
	Delete(pipeline string) bool
	// Play queues the pipeline for execution.
	Play(pipeline string) bool
}

// Source supplies playlist entries. *player.Session satisfies it.
type Source interface {
	Playlist() []playlist.Stats
}

// Row is one rendered playlist line.
type Row struct {
	// Pipeline is the canonical reference backing the row.
	Pipeline string
	// Display is the decorated text: existence marker plus display name.
	Display string
}

// Info holds the info panel fields for the selected pipeline.
type Info struct {
	Name     string
	Modified string
	Pipeline string
}

// View is the single-column playlist view model. It runs on the
// frontend's event goroutine and does no locking.
type View struct {
	source   Source
	actions  Actions
	desc     bool
	selected string
	entries  []playlist.Stats
	rows     []Row
}

// New builds a view over source dispatching to actions, and performs
// the first rebuild.
func New(source Source, actions Actions) (*View, error) {
	if source == nil {
		return nil, errors.New("playlistview: source is required")
	}
	if actions == nil {
		return nil, errors.New("playlistview: actions are required")
	}

	v := &View{source: source, actions: actions}
	v.Rebuild()
	return v, nil
}

// Rebuild refetches the entries, sorts and decorates them, and clears
// the selection when its pipeline is gone.
func (v *View) Rebuild() {
	entries := v.source.Playlist()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if v.desc {
			a, b = b, a
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Pipeline < b.Pipeline
	})

	rows := make([]Row, len(entries))
	selectionKept := false
	for i, st := range entries {
		marker := markerMissing
		if st.Exists {
			marker = markerExists
		}
		rows[i] = Row{Pipeline: st.Pipeline, Display: marker + " " + st.Name}
		if st.Pipeline == v.selected {
			selectionKept = true
		}
	}

	v.entries = entries
	v.rows = rows
	if !selectionKept {
		v.selected = ""
	}
}

// Rows returns the rendered rows in display order.
func (v *View) Rows() []Row {
	return append([]Row(nil), v.rows...)
}

// Len returns the number of rows.
func (v *View) Len() int {
	return len(v.rows)
}

// ToggleSortOrder flips between ascending and descending display-name
// order and rebuilds.
func (v *View) ToggleSortOrder() {
	v.desc = !v.desc
	v.Rebuild()
}

// Descending reports whether rows sort in descending order.
func (v *View) Descending() bool {
	return v.desc
}

// Header is the list header text with the sort direction arrow.
func (v *View) Header() string {
	if v.desc {
		return "Pipelines: " + markerDesc
	}
	return "Pipelines: " + markerAsc
}

// Select marks the pipeline as selected when it is present in the view.
func (v *View) Select(pipeline string) {
	for _, r := range v.rows {
		if r.Pipeline == pipeline {
			v.selected = pipeline
			return
		}
	}
	logging.Debug("Select ignored unknown pipeline %s", pipeline)
}

// Selected returns the selected pipeline reference, if any.
func (v *View) Selected() (string, bool) {
	return v.selected, v.selected != ""
}

// ClearSelection drops the selection.
func (v *View) ClearSelection() {
	v.selected = ""
}

// Info returns the info panel fields for the selection.
func (v *View) Info() (Info, bool) {
	if v.selected == "" {
		return Info{}, false
	}
	for _, st := range v.entries {
		if st.Pipeline != v.selected {
			continue
		}
		info := Info{Name: st.Name, Pipeline: st.Pipeline}
		if st.Exists {
			info.Modified = st.ModifiedAt.Format(modifiedLayout) + " " + markerExists
		} else {
			info.Modified = markerMissing
		}
		return info, true
	}
	return Info{}, false
}

// PressAdd dispatches the add action.
func (v *View) PressAdd() {
	logging.Debug("playlist add pressed")
	if v.actions.Add() {
		v.Rebuild()
	}
}

// PressDelete dispatches the delete action for the selection. Without a
// selection it does nothing.
func (v *View) PressDelete() {
	if v.selected == "" {
		return
	}
	logging.Debug("playlist delete pressed: %s", v.selected)
	if v.actions.Delete(v.selected) {
		v.Rebuild()
	}
}

// PressPlay dispatches the play action for the selection. Without a
// selection it does nothing.
func (v *View) PressPlay() {
	if v.selected == "" {
		return
	}
	logging.Debug("playlist play pressed: %s", v.selected)
	if v.actions.Play(v.selected) {
		v.Rebuild()
	}
}
