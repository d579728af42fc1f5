// Package mail_tools provides MCP (Model Context Protocol) tools for working
// with a linked mailbox through the provider abstraction.
//
// The tools are provider-agnostic: the same tool names and argument shapes
// work against Gmail and Outlook accounts, with the account argument selecting
// which linked mailbox to operate on (empty means the current account).
//
// Reading:
//   - mail_list_inbox: List threads currently in the inbox
//   - mail_search: Search threads with a provider-translated query
//   - mail_read_thread: Fetch a full thread with message bodies
//   - mail_list_starred: List starred (flagged) threads
//   - mail_list_labels: List labels or folders for the account
//   - mail_thread_labels: List the labels applied to one thread
//
// Actions (skipped in read-only mode):
//   - mail_archive_threads, mail_delete_threads: Batch thread disposal
//   - mail_mark_read, mail_mark_unread: Batch read-state changes
//   - mail_star_thread, mail_unstar_thread: Single-thread star toggles
//   - mail_add_label, mail_remove_label: Batch label/folder membership
//
// Composition (skipped in read-only mode):
//   - mail_send: Send an email
//   - mail_create_draft: Create a draft without sending
//   - mail_reply: Reply within an existing thread
//
// Batch tools accept threadIds as either a single string or an array and
// report per-item success and failure rather than failing the whole call.
package mail_tools
