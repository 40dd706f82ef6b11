// Package ratelimit provides request pacing for the comment fetcher.
//
// The Interval limiter guarantees a hard floor on the spacing between
// consecutive request start times, computed as 1/requestsPerSecond. All
// callers serialize through one mutex, so the guarantee holds regardless of
// how many fetch tasks share the limiter. It deliberately does not implement
// bursting or token accumulation: a quiet period does not buy a burst later.
//
// Usage:
//
//	limiter := ratelimit.NewInterval(2.0) // at most one request every 500ms
//	for hasMore {
//	    limiter.Wait()
//	    fetchPage()
//	}
package ratelimit
