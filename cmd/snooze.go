package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

func newSnoozeCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "snooze <thread-id> <until>",
		Short: "Snooze a thread until a wake time",
		Long: `Snooze a thread: it leaves the inbox now and returns when the reminder
fires. The wake time is RFC 3339, e.g. 2026-09-01T09:00:00Z.

The printed reminder ID is the durable handle for cancelling early;
unsnooze can usually recover it from the thread when lost.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			until, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid wake time %q: must be RFC 3339, e.g. 2026-09-01T09:00:00Z", args[1])
			}
			if !until.After(time.Now()) {
				return fmt.Errorf("wake time %s is not in the future", args[1])
			}

			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			conn, tok, err := connectAccount(cmd, sc, account)
			if err != nil {
				return err
			}

			reminderID, err := sc.Snooze().Snooze(cmd.Context(), tok, conn.Mailbox(), args[0], until)
			if err != nil {
				return err
			}
			fmt.Printf("Snoozed %s until %s (reminder %s)\n", args[0], until.Format(time.RFC3339), reminderID)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	return cmd
}

func newUnsnoozeCmd() *cobra.Command {
	var (
		account    string
		reminderID string
	)

	cmd := &cobra.Command{
		Use:   "unsnooze <thread-id>",
		Short: "Cancel a snooze and return the thread to the inbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			conn, tok, err := connectAccount(cmd, sc, account)
			if err != nil {
				return err
			}

			err = sc.Snooze().Unsnooze(cmd.Context(), tok, conn.Mailbox(), args[0], reminderID)
			if err != nil {
				if mailbox.IsKind(err, mailbox.KindReminderNotFound) {
					return fmt.Errorf("no active reminder found for thread %s", args[0])
				}
				return err
			}
			fmt.Printf("Thread %s returned to the inbox\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	cmd.Flags().StringVar(&reminderID, "reminder", "", "Reminder ID from snooze; recovered from the thread when omitted")
	return cmd
}

func newSnoozedCmd() *cobra.Command {
	var (
		account string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "snoozed",
		Short: "List snoozed threads with their wake times",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			conn, tok, err := connectAccount(cmd, sc, account)
			if err != nil {
				return err
			}

			snoozed, err := sc.Snooze().ListSnoozed(cmd.Context(), tok, conn.Mailbox(), limit)
			if err != nil {
				return err
			}
			if len(snoozed) == 0 {
				fmt.Println("No snoozed threads.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "THREAD\tWAKES\tSUBJECT")
			for _, s := range snoozed {
				subject := "(thread no longer readable)"
				if s.Thread != nil {
					subject = s.Thread.Subject
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					s.Reminder.ThreadID, s.Reminder.TriggerAt.Format(time.RFC3339), subject)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of snoozed threads to list")
	return cmd
}
