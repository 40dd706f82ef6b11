// Package comments contains the fetch engine: the paginator that walks the
// cursor-based comment listing to exhaustion, and the recovery controller
// that keeps it moving through credential expiry.
//
// Pagination is strictly sequential because each page's cursor comes from
// the previous response. A page is appended exactly once, only after its
// fetch attempt classifies as success; auth loss re-issues the same cursor
// after re-authentication, so no page is duplicated or dropped across a
// credential refresh.
package comments
