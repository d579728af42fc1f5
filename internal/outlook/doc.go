// Package outlook implements the mailbox provider for accounts backed by
// the Microsoft Graph API.
//
// Graph exposes a flat message stream with folders and flags instead of
// labels and native threads. The adapter bridges the gap:
//
//   - Threads are synthesized by grouping messages on their conversation
//     key; the thread ID handed to callers is that key, and summary fields
//     come from the newest message observed during the scan.
//   - Archive moves a thread's messages to the folder whose display name
//     is "Archive". The folder is resolved by name on each call because
//     its ID differs per account.
//   - Star and read state are per-message patches (flag status and the
//     isRead boolean). All messages of a thread are patched together so
//     the thread's state stays consistent; mixed outcomes are reported
//     per message, never collapsed.
//   - Label operations translate to folder moves, and label listing
//     returns the mail folder list.
//
// Pagination follows @odata.nextLink URLs through the shared scan engine.
package outlook
