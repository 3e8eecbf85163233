// Package buffer holds the in-memory line representation of an open file.
//
// Invariants:
// - Lines never contain embedded line terminators.
// - Replace is the only content-mutating primitive and returns a new buffer,
//   leaving the receiver untouched.
// - A buffer round-trips byte-identically: String() of an unmodified buffer
//   equals the content it was built from.
package buffer
