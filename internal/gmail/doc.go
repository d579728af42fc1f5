// Package gmail implements the mailbox.Provider interface against the
// Gmail REST API.
//
// Gmail is the label-based provider with native thread objects, so the
// uniform operations map closely onto its wire calls: archive removes the
// INBOX label, star and read-state toggle the STARRED and UNREAD system
// labels, and all three go through the one Threads.Modify call taking an
// add-list and a remove-list. Listing pages through opaque nextPageToken
// cursors via the shared pagination engine.
package gmail
