package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

func newLoginCmd() *cobra.Command {
	var authCode string

	cmd := &cobra.Command{
		Use:   "login <provider> <email>",
		Short: "Link a Gmail or Outlook account",
		Long: `Link a mail account by completing the OAuth authorization code flow.

Without --code the command prints the provider's authorization URL; visit
it, grant access, and re-run the command with the code you received:

  superhuman-cli login gmail me@example.com
  superhuman-cli login gmail me@example.com --code 4/0Af...

The first linked account becomes the current account.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := mailbox.ProviderKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown provider %q (supported: %s, %s)",
					args[0], mailbox.ProviderGmail, mailbox.ProviderOutlook)
			}
			email := args[1]

			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if authCode == "" {
				url, err := sc.Store().AuthURL(kind)
				if err != nil {
					return err
				}
				fmt.Printf("Visit this URL to authorize access:\n\n  %s\n\n", url)
				fmt.Print("Paste the authorization code (or re-run with --code): ")

				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				authCode = strings.TrimSpace(line)
				if authCode == "" {
					return fmt.Errorf("no authorization code provided")
				}
			}

			if err := sc.Store().Authorize(cmd.Context(), kind, email, authCode); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			fmt.Printf("Linked %s account %s\n", kind, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&authCode, "code", "", "OAuth authorization code obtained from the provider")
	return cmd
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsList(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List linked accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsList(cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <email>",
		Short: "Make an account the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if err := sc.Store().SetCurrent(args[0]); err != nil {
				return err
			}
			fmt.Printf("Current account is now %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <email>",
		Short: "Unlink an account and discard its credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newServerContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if err := sc.Store().RemoveAccount(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed account %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func runAccountsList(cmd *cobra.Command) error {
	sc, err := newServerContext(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	accounts := sc.Store().ListAccounts()
	if len(accounts) == 0 {
		fmt.Println("No linked accounts. Use `superhuman-cli login` to link one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tPROVIDER\tCURRENT")
	for _, a := range accounts {
		current := ""
		if a.Current {
			current = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Email, a.Provider, current)
	}
	return w.Flush()
}
