// Package export turns a WebReplay store into a single XML document.
//
// An export is a linear run over one store connection:
//
//	Idle → Connected → LoginsExported → NotesExported → BookmarksExported → Saved → Closed
//
// Every failure jumps straight to Closed. The connection is released on every
// path, and the output file is only ever replaced by a complete document:
// the serialized tree goes to a temporary file next to the target which is
// renamed over it once fully written.
//
// The three record exporters (logins, notes, bookmarks) share one shape:
// run a fixed read-only query, turn each row into one element with a fixed
// attribute set, append it to the document in query order and report how
// many rows were handled. A bookmark whose embedded fragment does not parse
// aborts the whole export; there is no per-row recovery.
//
// Nothing here retries. The engine runs one export at a time, synchronously;
// callers that need a deadline pass a context and the pending query fails
// when it expires.
package export
