// Package cmd implements the command-line interface for superhuman-cli.
//
// Account management: login, accounts (list/use/remove).
// Mailbox: inbox, search, read, archive, star, unstar, mark, label.
// Snoozing: snooze, unsnooze, snoozed.
// Server: serve starts the MCP stdio server with an optional metrics port.
//
// All mailbox commands take --account to select a linked account; without
// it the credential store's current account is used.
package cmd
