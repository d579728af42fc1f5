// Package mailbox defines the uniform mailbox data model and the provider
// abstraction that the rest of the application is written against.
//
// Two backing services with incompatible native models sit behind the
// Provider interface: Gmail (label-based, native thread objects) and
// Outlook via Microsoft Graph (folder/flag-based, flat message stream).
// Adapters translate each uniform operation into the provider's wire calls
// and normalize every failure into an *Error; provider-specific types never
// cross this package's boundary, so callers only ever see JSON-serializable
// shapes.
//
// The package also carries the pagination engine shared by both adapters
// (Scan) and the connection facade that selects between a token-backed
// adapter and the live-application fallback (Connect).
package mailbox
