// Command playlistctl manages the pipeline-player playlist and inspects
// recorded runs from the command line.
//
// It operates on the same <base>/.peekingduck directory as the player, so
// changes made here are picked up by the next player session.
//
// Usage:
//
//	playlistctl [flags] <command> [args]
//
// Commands:
//
//	list     Show playlist entries with an existence marker, the display
//	         name, the cached modification time, and the full path.
//
//	add      Add one or more pipeline files and save the playlist.
//	         Duplicates are reported per path and skipped.
//
//	remove   Remove one pipeline file and save the playlist. Prompts for
//	         confirmation when stdin is a terminal; -y skips the prompt.
//
//	stats    Show the cached stats for one playlist entry.
//
//	history  Show recent pipeline runs, newest first, optionally filtered
//	         to one pipeline file.
//
//	version  Print build information.
//
// Environment:
//
//	PLAYER_HOME - Base directory holding .peekingduck (default: the user
//	home directory). The -home flag takes precedence.
//
// Notes:
//
// The playlist stats shown by list and stats are the cached values from
// when each reference was registered, matching what the player itself
// reports. Run the player (or add the entry again) to refresh them.
package main
