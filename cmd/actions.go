package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// withConnection runs fn against the hinted account's connection. Batch
// operations need the connection rather than the bare provider.
func withConnection(cmd *cobra.Command, account string, fn func(ctx context.Context, conn mailbox.ConnectionProvider) error) error {
	sc, err := newServerContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	conn, _, err := connectAccount(cmd, sc, account)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), conn)
}

// reportBatch prints a per-item batch outcome. Partial failure is reported
// but does not fail the command; a wholly failed batch does.
func reportBatch(res mailbox.BatchResult, verb string) error {
	for _, id := range res.Succeeded {
		fmt.Printf("%s %s\n", verb, id)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(os.Stderr, "failed: %s: %s\n", f.ID, f.Error)
	}
	if len(res.Succeeded) == 0 && len(res.Failed) > 0 {
		return fmt.Errorf("all %d operations failed", len(res.Failed))
	}
	return nil
}

func newArchiveCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "archive <thread-id>...",
		Short: "Archive threads, removing them from the inbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, account, func(ctx context.Context, conn mailbox.ConnectionProvider) error {
				res, err := mailbox.ArchiveThreads(ctx, conn, args)
				if err != nil {
					return err
				}
				return reportBatch(res, "archived")
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	return cmd
}

func newStarCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "star <thread-id>",
		Short: "Star (flag) a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
				if err := provider.Star(ctx, tok, args[0]); err != nil {
					return err
				}
				fmt.Printf("starred %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	return cmd
}

func newUnstarCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "unstar <thread-id>",
		Short: "Remove the star (flag) from a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
				if err := provider.Unstar(ctx, tok, args[0]); err != nil {
					return err
				}
				fmt.Printf("unstarred %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	return cmd
}

func newMarkCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Change the read state of threads",
	}

	cmd.PersistentFlags().StringVar(&account, "account", "", "Account email (default: the current account)")

	cmd.AddCommand(&cobra.Command{
		Use:   "read <thread-id>...",
		Short: "Mark threads as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, account, func(ctx context.Context, conn mailbox.ConnectionProvider) error {
				res, err := mailbox.MarkThreadsRead(ctx, conn, args)
				if err != nil {
					return err
				}
				return reportBatch(res, "marked read")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unread <thread-id>...",
		Short: "Mark threads as unread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, account, func(ctx context.Context, conn mailbox.ConnectionProvider) error {
				res, err := mailbox.MarkThreadsUnread(ctx, conn, args)
				if err != nil {
					return err
				}
				return reportBatch(res, "marked unread")
			})
		},
	})

	return cmd
}

func newLabelCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Work with labels and folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelList(cmd, account)
		},
	}

	cmd.PersistentFlags().StringVar(&account, "account", "", "Account email (default: the current account)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List labels or folders for the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabelList(cmd, account)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <label-id> <thread-id>...",
		Short: "Apply a label to threads",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, account, func(ctx context.Context, conn mailbox.ConnectionProvider) error {
				res, err := mailbox.AddLabelToThreads(ctx, conn, args[1:], args[0])
				if err != nil {
					return err
				}
				return reportBatch(res, "labeled")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <label-id> <thread-id>...",
		Short: "Remove a label from threads",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd, account, func(ctx context.Context, conn mailbox.ConnectionProvider) error {
				res, err := mailbox.RemoveLabelFromThreads(ctx, conn, args[1:], args[0])
				if err != nil {
					return err
				}
				return reportBatch(res, "unlabeled")
			})
		},
	})

	return cmd
}

func runLabelList(cmd *cobra.Command, account string) error {
	return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
		labels, err := provider.ListLabels(ctx, tok)
		if err != nil {
			return err
		}
		if len(labels) == 0 {
			fmt.Println("No labels.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE")
		for _, l := range labels {
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, l.Type)
		}
		return w.Flush()
	})
}
