// Package gateway exposes the command adapter to remote callers over
// WebSocket. Every connection gets its own independent editing session, so
// concurrent agents never share buffer state.
package gateway
