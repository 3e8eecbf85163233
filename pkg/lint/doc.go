// Package lint provides the optional validation gate that can veto an edit.
//
// The gate policy is asymmetric: an edit is rejected only when the post-edit
// check reports diagnostics that were absent from the pre-edit check. Issues
// that predate the edit never block it.
//
// Diagnostic identity is Code plus Line. Message text is too unstable across
// linter versions and column numbers shift with unrelated whitespace, so
// neither participates in the comparison.
package lint
