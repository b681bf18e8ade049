// Package playlistview models the single-column playlist list: sorted,
// decorated rows over the playlist entries, a tracked selection with
// info panel fields, and dispatch of the add/delete/play controls
// through the typed Actions interface.
//
// The view holds pure state; rendering belongs to the frontend. Rows
// decorate each entry's display name with an existence marker and sort
// by display name, ascending by default. An action returning true means
// the playlist changed and the view rebuilds. The selection survives
// rebuilds while its pipeline stays present.
//
// The view runs on the frontend's event goroutine and does no locking.
package playlistview
