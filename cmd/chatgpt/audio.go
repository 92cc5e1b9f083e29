package main

import (
	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var audioCommand = &cobra.Command{
	Use:   "audio",
	Short: "Transcribe and translate audio",
}

var audioTranscribeCommand = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe audio into the language it is spoken in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chatgpt.NewTranscriptionRequest(cli.model(cli.cfg.AudioModel), args[0])
		req.Prompt, req.ResponseFormat, req.Temperature = audioFlags(cmd)

		if language, _ := cmd.Flags().GetString("language"); language != "" {
			req.Language = &language
		}

		resp, err := cli.client.CreateTranscription(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/audio/transcriptions", req, resp, err)
		if err != nil {
			return err
		}

		return printAudio(resp)
	},
}

var audioTranslateCommand = &cobra.Command{
	Use:   "translate <file>",
	Short: "Translate audio into English",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chatgpt.NewTranslationRequest(cli.model(cli.cfg.AudioModel), args[0])
		req.Prompt, req.ResponseFormat, req.Temperature = audioFlags(cmd)

		resp, err := cli.client.CreateTranslation(cmd.Context(), req)
		cli.record(cmd.Context(), "/v1/audio/translations", req, resp, err)
		if err != nil {
			return err
		}

		return printAudio(resp)
	},
}

// audioFlags returns the optional fields shared by both audio requests.
func audioFlags(cmd *cobra.Command) (prompt, format *string, temperature *float64) {
	flags := cmd.Flags()

	if v, _ := flags.GetString("prompt"); v != "" {
		prompt = &v
	}
	if v, _ := flags.GetString("format"); v != "" {
		format = &v
	}
	if flags.Changed("temperature") {
		v, _ := flags.GetFloat64("temperature")
		temperature = &v
	}

	return prompt, format, temperature
}

// printAudio prints the text of resp. Plain text formats have no JSON to
// show, so --raw prints them as received.
func printAudio(resp *chatgpt.AudioResponse) error {
	if !flagRaw || resp.Plain() {
		return cli.out.Text(resp.Text())
	}
	return cli.out.JSON(resp.Raw())
}

func init() {
	flags := audioCommand.PersistentFlags()
	flags.String("prompt", "", "text to guide the style of the output")
	flags.String("format", "", "response format: json, text, srt, verbose_json or vtt")
	flags.Float64("temperature", 0, "sampling temperature")

	audioTranscribeCommand.Flags().String("language", "", "ISO-639-1 language of the audio")

	audioCommand.AddCommand(
		audioTranscribeCommand,
		audioTranslateCommand,
	)

	rootCmd.AddCommand(audioCommand)
}
