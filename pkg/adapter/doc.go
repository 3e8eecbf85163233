// Package adapter translates the textual command protocol spoken by a
// calling agent into session operations and formats the responses.
//
// Commands are line-oriented. Replacement payloads arrive either inline on
// the command line or as subsequent input lines terminated by a sentinel
// line (end-of-stream also terminates). Errors never touch session state;
// every response carries an exit code: 0 on success, 1 on any failure.
package adapter
