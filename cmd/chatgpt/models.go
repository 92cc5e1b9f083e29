package main

import (
	"github.com/spf13/cobra"
)

var modelsCommand = &cobra.Command{
	Use:   "models",
	Short: "List and describe the available models",
}

var modelsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List the models the server offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := cli.client.ListModels(cmd.Context())
		cli.record(cmd.Context(), "/v1/models", nil, resp, err)
		if err != nil {
			return err
		}

		return cli.print(resp, func() error {
			for _, id := range resp.IDs() {
				if err := cli.out.Text(id); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var modelsGetCommand = &cobra.Command{
	Use:   "get <model>",
	Short: "Describe a single model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := cli.client.RetrieveModel(cmd.Context(), args[0])
		cli.record(cmd.Context(), "/v1/models/"+args[0], nil, resp, err)
		if err != nil {
			return err
		}

		return cli.print(resp, func() error {
			if err := cli.out.Field("id", resp.ID()); err != nil {
				return err
			}
			return cli.out.Field("owned by", resp.OwnedBy())
		})
	},
}

func init() {
	modelsCommand.AddCommand(
		modelsListCommand,
		modelsGetCommand,
	)

	rootCmd.AddCommand(modelsCommand)
}
