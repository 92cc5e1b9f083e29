package main

import (
	"fmt"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/embeddings"
	"github.com/spf13/cobra"
)

var embedCommand = &cobra.Command{
	Use:   "embed <text>...",
	Short: "Create embedding vectors for texts",
	Long: `Create an embedding vector for every text. With --compare the first text is
the query and the others are ranked by how similar they are to it.`,
	Example: `  chatgpt embed --compare "pizza" "pasta" "cyber security" "lasagna"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compare, _ := cmd.Flags().GetBool("compare")
		if compare && len(args) < 2 {
			return fmt.Errorf("--compare needs a query and at least one text to compare it with")
		}

		req := chatgpt.NewEmbeddingRequest(cli.model(cli.cfg.EmbeddingModel), args...)

		resp, err := cli.client.CreateEmbedding(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/embeddings", req, resp, err)
		if err != nil {
			return err
		}

		return cli.print(resp, func() error {
			vectors := resp.Embeddings()
			if len(vectors) != len(args) {
				return fmt.Errorf("expected %d embeddings, got %d", len(args), len(vectors))
			}

			if !compare {
				for i, vector := range vectors {
					if err := cli.out.Field(args[i], fmt.Sprintf("%s dimensions", cli.out.Number(len(vector)))); err != nil {
						return err
					}
				}
				return nil
			}

			matches, err := embeddings.Rank(vectors[0], vectors[1:])
			if err != nil {
				return fmt.Errorf("failed to rank embeddings: %w", err)
			}

			for _, match := range matches {
				if err := cli.out.Text(fmt.Sprintf("%s %s", cli.out.Number(fmt.Sprintf("%.4f", match.Score)), args[match.Index+1])); err != nil {
					return err
				}
			}

			return nil
		})
	},
}

func init() {
	embedCommand.Flags().Bool("compare", false, "rank the texts by similarity to the first one")

	rootCmd.AddCommand(embedCommand)
}
