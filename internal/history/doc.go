// Package history keeps a ledger of finished pipeline runs in a local
// SQLite database at <base>/.peekingduck/history.db.
//
// Every run the player session finishes, whatever the outcome, becomes one
// row: which pipeline ran, what fed it frames, when it started and ended,
// how many frames it produced, and whether it completed, was stopped, or
// failed. The ledger is append-only from the player's point of view;
// nothing in the program updates or deletes recorded runs.
//
// The database is opened in WAL mode so the status API can read run
// history while the session writes. Queries carry a five second timeout;
// list queries cap their result size.
//
// History is optional at the application level. When it is disabled the
// player simply runs without a Ledger and nothing else changes.
package history
