// Package gate holds the access-gate core shared by the server and the
// reader client: resource references and their storage keys, decisions,
// the byte-exact check, and the resolver that decides whether an article
// secret or the site-wide category secret governs a request.
//
// The package does no I/O of its own. Configuration and article metadata
// are injected through SiteConfig and ContentLoader.
package gate
