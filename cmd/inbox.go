package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
)

// connectAccount resolves the --account hint into a connection and token.
func connectAccount(cmd *cobra.Command, sc *server.ServerContext, account string) (mailbox.ConnectionProvider, *mailbox.Token, error) {
	conn, err := sc.Connection(cmd.Context(), account)
	if err != nil {
		if mailbox.IsKind(err, mailbox.KindNoCredentials) {
			return nil, nil, fmt.Errorf("no credentials for account %q; link it first with `superhuman-cli login`", account)
		}
		return nil, nil, err
	}
	tok, err := conn.GetToken(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return conn, tok, nil
}

// withMailbox runs fn against the hinted account's mailbox, handling setup
// and teardown of the service graph.
func withMailbox(cmd *cobra.Command, account string, fn func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error) error {
	sc, err := newServerContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	conn, tok, err := connectAccount(cmd, sc, account)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), conn.Mailbox(), tok)
}

func printThreads(threads []mailbox.Thread) error {
	if len(threads) == 0 {
		fmt.Println("No threads.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tFROM\tSUBJECT")
	for _, th := range threads {
		from := th.From.Name
		if from == "" {
			from = th.From.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			th.ID, th.Date.Format("2006-01-02 15:04"), from, th.Subject)
	}
	return w.Flush()
}

func newInboxCmd() *cobra.Command {
	var (
		account string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List threads currently in the inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
				threads, err := provider.ListInbox(ctx, tok, limit)
				if err != nil {
					return err
				}
				return printThreads(threads)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of threads to list")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		account     string
		limit       int
		includeDone bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search mailbox threads",
		Long: `Search threads with a provider-translated query. By default the search
is scoped to the inbox; --all includes archived and filed threads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
				threads, err := provider.Search(ctx, tok, mailbox.SearchOptions{
					Query:       args[0],
					Limit:       limit,
					IncludeDone: includeDone,
				})
				if err != nil {
					return err
				}
				return printThreads(threads)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of threads to return")
	cmd.Flags().BoolVar(&includeDone, "all", false, "Include archived and filed threads")
	return cmd
}

func newReadCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "read <thread-id>",
		Short: "Show a full thread with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMailbox(cmd, account, func(ctx context.Context, provider mailbox.Provider, tok *mailbox.Token) error {
				detail, err := provider.ReadThread(ctx, tok, args[0])
				if err != nil {
					if mailbox.IsKind(err, mailbox.KindNotFound) {
						return fmt.Errorf("thread %s not found", args[0])
					}
					return err
				}

				fmt.Printf("Subject: %s\n", detail.Subject)
				fmt.Printf("Thread:  %s (%d messages)\n\n", detail.ID, detail.MessageCount)
				for _, msg := range detail.Messages {
					from := msg.From.Name
					if from == "" {
						from = msg.From.Email
					}
					fmt.Printf("--- %s  %s\n", msg.Date.Format("2006-01-02 15:04"), from)
					fmt.Printf("%s\n\n", msg.Snippet)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account email (default: the current account)")
	return cmd
}
