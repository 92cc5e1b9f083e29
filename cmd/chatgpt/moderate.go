package main

import (
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var moderateCommand = &cobra.Command{
	Use:   "moderate <text>...",
	Short: "Check whether texts violate the usage policies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chatgpt.NewModerationRequest(args...)
		if flagModel != "" {
			req.Model = &flagModel
		}

		resp, err := cli.client.CreateModeration(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/moderations", req, resp, err)
		if err != nil {
			return err
		}

		return cli.print(resp, func() error {
			for i, text := range args {
				categories := resp.Categories(i)

				status := "ok"
				if len(categories) > 0 {
					status = "flagged: " + strings.Join(categories, ", ")
				}

				if err := cli.out.Field(text, status); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(moderateCommand)
}
