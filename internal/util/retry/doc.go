// Package retry provides the retry primitives used around provider calls and
// remote bootstrap.
//
// [Policy] is a fixed-interval loop with optional attempt and deadline bounds
// and an injectable sleeper. The zero bounds mean "retry forever", which is
// how instance readiness polling and the bootstrap sequence run by default.
// [Backoff] covers short-lived API calls such as archive
// uploads. Errors wrapped with [Fatal] stop either loop immediately.
package retry
