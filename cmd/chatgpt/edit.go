package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var editCommand = &cobra.Command{
	Use:   "edit <instruction>",
	Short: "Rewrite text following an instruction",
	Long: `Rewrite the text given with --input, or read from standard input, following
the instruction.`,
	Example: `  echo "What day of the wek is it?" | chatgpt edit "Fix the spelling mistakes"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		if !cmd.Flags().Changed("input") {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			input = string(b)
		}

		req := chatgpt.NewEditRequest(cli.model(cli.cfg.EditModel), strings.Join(args, " "), input)

		if cmd.Flags().Changed("n") {
			n, _ := cmd.Flags().GetInt("n")
			req.N = &n
		}

		resp, err := cli.client.CreateEdit(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/edits", req, resp, err)
		if err != nil {
			return err
		}

		return cli.print(resp, func() error {
			for _, text := range resp.Texts() {
				if err := cli.out.Text(strings.Trim(text, "\n")); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	editCommand.Flags().String("input", "", "text to edit (default: read standard input)")
	editCommand.Flags().IntP("n", "n", 1, "number of edits to generate")

	rootCmd.AddCommand(editCommand)
}
