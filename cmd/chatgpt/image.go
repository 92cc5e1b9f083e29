package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var imageCommand = &cobra.Command{
	Use:   "image",
	Short: "Generate and edit images",
}

var imageGenerateCommand = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate images from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageFlags(cmd)
		if err != nil {
			return err
		}

		req := chatgpt.NewImageGenerationRequest(strings.Join(args, " "), opts.n)
		req.Model = opts.model
		req.Size = opts.size
		req.ResponseFormat = opts.format

		resp, err := cli.client.CreateImage(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/images/generations", req, resp, err)
		if err != nil {
			return err
		}

		return printImages(resp, opts.out)
	},
}

var imageEditCommand = &cobra.Command{
	Use:   "edit <image> <prompt>",
	Short: "Edit an image following a prompt",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageFlags(cmd)
		if err != nil {
			return err
		}

		req := chatgpt.NewImageEditRequest(args[0], strings.Join(args[1:], " "))
		req.N = &opts.n
		req.Model = opts.model
		req.Size = opts.size
		req.ResponseFormat = opts.format

		if mask, _ := cmd.Flags().GetString("mask"); mask != "" {
			req.Mask = &mask
		}

		resp, err := cli.client.CreateImageEdit(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/images/edits", req, resp, err)
		if err != nil {
			return err
		}

		return printImages(resp, opts.out)
	},
}

var imageVariationCommand = &cobra.Command{
	Use:   "variation <image>",
	Short: "Create variations of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := imageFlags(cmd)
		if err != nil {
			return err
		}

		req := chatgpt.NewImageVariationRequest(args[0], opts.n)
		req.Model = opts.model
		req.Size = opts.size
		req.ResponseFormat = opts.format

		resp, err := cli.client.CreateImageVariation(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/images/variations", req, resp, err)
		if err != nil {
			return err
		}

		return printImages(resp, opts.out)
	},
}

type imageOptions struct {
	n      int
	model  *string
	size   *string
	format *string
	out    string
}

// imageFlags reads the flags shared by the image commands. Unset optional
// flags stay nil so the server defaults apply.
func imageFlags(cmd *cobra.Command) (imageOptions, error) {
	var (
		opts imageOptions
		err  error
	)

	flags := cmd.Flags()

	if opts.n, err = flags.GetInt("n"); err != nil {
		return opts, err
	}

	if opts.out, err = flags.GetString("out"); err != nil {
		return opts, err
	}

	if flagModel != "" {
		opts.model = &flagModel
	}

	if size, _ := flags.GetString("size"); size != "" {
		opts.size = &size
	}

	// Images are downloaded as base64 when they are saved to disk.
	if opts.out != "" {
		opts.format = chatgpt.Ptr(chatgpt.ImageResponseFormatB64JSON)
	}

	return opts, nil
}

// printImages prints the image URLs, or writes the images into dir when the
// response carries their contents.
func printImages(resp *chatgpt.ImageResponse, dir string) error {
	return cli.print(resp, func() error {
		for _, prompt := range resp.RevisedPrompts() {
			if err := cli.out.Faint(prompt); err != nil {
				return err
			}
		}

		for _, url := range resp.URLs() {
			if err := cli.out.Text(url); err != nil {
				return err
			}
		}

		images, err := resp.Images()
		if err != nil {
			return err
		}

		if len(images) > 0 {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		for i, image := range images {
			path := filepath.Join(dir, fmt.Sprintf("image-%d.png", i+1))
			if err := os.WriteFile(path, image, 0o644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}
			if err := cli.out.Text(path); err != nil {
				return err
			}
		}

		return nil
	})
}

func init() {
	flags := imageCommand.PersistentFlags()
	flags.IntP("n", "n", 1, "number of images")
	flags.String("size", "", "image size, such as 1024x1024")
	flags.StringP("out", "o", "", "directory to save the images in instead of printing URLs")

	imageEditCommand.Flags().String("mask", "", "image whose transparent areas mark where to edit")

	imageCommand.AddCommand(
		imageGenerateCommand,
		imageEditCommand,
		imageVariationCommand,
	)

	rootCmd.AddCommand(imageCommand)
}
