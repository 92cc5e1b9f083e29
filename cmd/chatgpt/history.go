package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "Inspect the exchanges recorded so far",
}

var historyListCommand = &cobra.Command{
	Use:   "list",
	Short: "List recorded exchanges, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		after, _ := cmd.Flags().GetString("after")

		entries, next, err := cli.history.List(cmd.Context(), limit, after)
		if err != nil {
			return err
		}

		if flagRaw {
			b, err := json.Marshal(map[string]any{"entries": entries, "next": next})
			if err != nil {
				return fmt.Errorf("failed to marshal history: %w", err)
			}
			return cli.out.JSON(b)
		}

		for _, entry := range entries {
			line := fmt.Sprintf("%s  %s  %s  %s",
				entry.ID,
				entry.CreatedAt.Local().Format(time.DateTime),
				cli.out.Number(entry.Status),
				entry.Endpoint,
			)
			if entry.Model != "" {
				line += "  " + entry.Model
			}
			if err := cli.out.Text(line); err != nil {
				return err
			}
		}

		if next != "" {
			return cli.out.Faint("more: chatgpt history list --after " + next)
		}

		return nil
	},
}

var historyShowCommand = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, found, err := cli.history.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no exchange with id %q", args[0])
		}

		b, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal exchange: %w", err)
		}

		return cli.out.JSON(b)
	},
}

var historyClearCommand = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded exchange",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := cli.history.Clear(cmd.Context())
		if err != nil {
			return err
		}

		return cli.out.Text(fmt.Sprintf("removed %s exchanges", cli.out.Number(removed)))
	},
}

func init() {
	historyListCommand.Flags().Int("limit", 20, "maximum number of exchanges to list")
	historyListCommand.Flags().String("after", "", "cursor printed by a previous list")

	historyCommand.AddCommand(
		historyListCommand,
		historyShowCommand,
		historyClearCommand,
	)

	rootCmd.AddCommand(historyCommand)
}
