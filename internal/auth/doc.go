// Package auth is the credential store for linked mail accounts.
//
// One JSON cache file holds an entry per account: access token, expiry,
// refresh material, and account metadata. The store owns the refresh
// material; adapters only ever receive a live mailbox.Token valid for one
// logical operation. Cache rewrites are atomic (temp file + rename) so a
// process dying mid-write cannot corrupt the cache for the next run, and
// concurrent refreshes of the same account settle last-writer-wins with
// both writers holding equivalent valid tokens.
package auth
