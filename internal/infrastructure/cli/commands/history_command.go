package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect tracked command history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(container *app.Container) *cobra.Command {
	var query string
	var searchLimit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search history for a keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			return listHistoryEntries(cmd.OutOrStdout(), container, searchLimit, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword")
	cmd.Flags().IntVar(&searchLimit, "limit", DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			return container.HistoryStore.Clear()
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			return container.HistoryStore.ExportJSON(args[0])
		},
	}
}

func listHistoryEntries(out io.Writer, container *app.Container, limit int, search string) error {
	if container.HistoryStore == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	records, err := container.HistoryStore.Records(limit, search)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		marker := "ok"
		if rec.ExitCode != 0 {
			marker = fmt.Sprintf("exit %d, %s", rec.ExitCode, rec.Category)
		}
		fmt.Fprintf(out, "%s | %s | %s\n",
			rec.Timestamp.Format(TimestampFormat), marker, rec.Command)
	}
	return nil
}
