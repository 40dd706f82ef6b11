// Package instagram implements the network-facing half of the comment
// fetcher: the GraphQL comment-listing query, the signed mobile login
// handshake, and the supporting pieces those two share (endpoint URL
// construction, request signing, deterministic device identifiers, and
// cookie-jar extraction).
//
// The package has no global state. Endpoint identifiers and signing material
// arrive through config.InstagramConfig, so tests can point a Client or
// Authenticator at an httptest server.
package instagram
