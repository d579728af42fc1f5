package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/config"
	"github.com/alexkarmel/superhuman-cli-sub000/internal/server"
)

var (
	configPath string
	debugMode  bool
)

// rootCmd represents the base command for the superhuman-cli application
var rootCmd = &cobra.Command{
	Use:   "superhuman-cli",
	Short: "Mailbox automation across Gmail and Outlook accounts",
	Long: `superhuman-cli drives Gmail and Outlook mailboxes through one uniform
command set: inbox listing, search, archiving, starring, labels, snoozing
and calendar access all work the same regardless of which provider backs
the account.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants (serve)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "superhuman-cli version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: $SUPERHUMAN_CLI_HOME/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newInboxCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newStarCmd())
	rootCmd.AddCommand(newUnstarCmd())
	rootCmd.AddCommand(newMarkCmd())
	rootCmd.AddCommand(newLabelCmd())
	rootCmd.AddCommand(newSnoozeCmd())
	rootCmd.AddCommand(newUnsnoozeCmd())
	rootCmd.AddCommand(newSnoozedCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("superhuman-cli version %s\n", version)
		},
	}
}

// newLogger builds the CLI logger. Debug mode lowers the level; output
// goes to stderr so command results on stdout stay clean.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newServerContext loads the configuration and builds the service graph
// CLI commands run against.
func newServerContext(cmd *cobra.Command) (*server.ServerContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	sc, err := server.NewServerContext(cmd.Context(), cfg, newLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return sc, nil
}
