// Package session implements the windowed file-editing session.
//
// A Session owns one open file: its line buffer, cursor, undo history, and
// an optional validation gate. Sessions are explicit objects, never ambient
// process state, so independent adapters and tests can each hold their own.
//
// Invariants:
// - All operations except Open fail with ErrNotOpen while the session is
//   closed.
// - A rejected or failed operation leaves buffer, cursor, undo stack, and
//   the on-disk file exactly as they were before the call.
// - Undo restores the pre-edit buffer byte-identically.
package session
