// Package main provides the rabbit CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rabbitlabs/rabbit/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	verbose  bool
	dbPath   string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "rabbit",
		Short: "LLM-driven browser automation agent",
		Long: `An autonomous agent that drives a real Chrome browser to complete tasks.

Given a natural-language task, the agent plans with an LLM, executes browser
tools (navigate, click, fill, extract), and records every step until it can
give a final answer.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default rabbit.db, or RABBIT_DB_PATH)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		session  string
		startURL string
		headless bool
		keepOpen bool
		maxIter  int
	)

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Execute a browser task",
		Long: `Execute a natural-language task against a live browser session.

The agent loops: plan an action with the LLM, dispatch it as a tool call,
record the observation, and repeat until it produces a final answer or hits
the iteration ceiling. Steps are persisted per session, so passing the same
--session resumes the step history.`,
		Example: `  rabbit run "What is the title of example.com?" -p openai
  rabbit run "Find the top story on news.ycombinator.com" -p anthropic --headless
  rabbit run "Fill the search box with 'golang' and submit" -p gemini --url https://duckduckgo.com --keep-open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:  provider,
				SessionID: session,
				StartURL:  startURL,
				DBPath:    dbPath,
				Headless:  headless,
				KeepOpen:  keepOpen,
				MaxIter:   maxIter,
				Verbose:   verbose,
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return cli.RunTask(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session ID for persistent step history")
	cmd.Flags().StringVarP(&startURL, "url", "u", "", "Open this URL before the agent starts")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a visible window")
	cmd.Flags().BoolVar(&keepOpen, "keep-open", false, "Keep the browser open after the task finishes")
	cmd.Flags().IntVarP(&maxIter, "max-iterations", "m", 0, "Maximum agent iterations (default from AGENT_MAX_ITERATIONS or 10)")

	return cmd
}

func historyCmd() *cobra.Command {
	var (
		session string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent task runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{DBPath: dbPath}
			return cli.History(context.Background(), session, limit, opts)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Filter history by session ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")

	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verbose)
		},
	}
}
