// Package reminder_tools provides MCP tools for the snooze workflow.
//
//   - mail_snooze: Hide a thread until a wake time; returns the reminder ID
//   - mail_unsnooze: Cancel a reminder early, recovering the ID when lost
//   - mail_list_snoozed: List active reminders joined with thread summaries
//
// Snoozing works the same against Gmail and Outlook accounts: the reminder
// backend holds the schedule and the provider adapter moves the thread out
// of and back into the inbox.
package reminder_tools
