package main

import (
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var completeCommand = &cobra.Command{
	Use:   "complete <prompt>",
	Short: "Complete a prompt with a text completion model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxTokens, err := cmd.Flags().GetInt("max-tokens")
		if err != nil {
			return err
		}

		req := chatgpt.NewCompletionRequest(cli.model(cli.cfg.Model), maxTokens, strings.Join(args, " "))

		if cmd.Flags().Changed("temperature") {
			temperature, err := cmd.Flags().GetFloat64("temperature")
			if err != nil {
				return err
			}
			req.Temperature = &temperature
		}

		if cmd.Flags().Changed("n") {
			n, err := cmd.Flags().GetInt("n")
			if err != nil {
				return err
			}
			req.N = &n
		}

		if stop, _ := cmd.Flags().GetStringSlice("stop"); len(stop) > 0 {
			req.Stop = stop
		}

		resp, err := cli.client.CreateCompletion(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/completions", req, resp, err)
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
	completeCommand.Flags().Int("max-tokens", 256, "maximum number of tokens to generate")
	completeCommand.Flags().Float64("temperature", 0.9, "sampling temperature")
	completeCommand.Flags().IntP("n", "n", 1, "number of completions to generate")
	completeCommand.Flags().StringSlice("stop", nil, "sequences where generation stops")

	rootCmd.AddCommand(completeCommand)
}
