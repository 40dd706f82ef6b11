// Package retry provides bounded retry with pluggable backoff strategies.
//
// The default predicate retries network, parsing, and generic HTTP status
// errors; auth-loss and terminal classifications surface immediately so the
// caller's recovery logic can handle them.
package retry
