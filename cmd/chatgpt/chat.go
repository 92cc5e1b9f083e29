package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/picatz/chatgpt"
	"github.com/spf13/cobra"
)

var chatCommand = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Chat with a chat completion model",
	Long: `Send a single message to a chat model, or start an interactive session
with -i. In a session every reply stays in the conversation sent with the next
message; type "exit" to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		system, _ := cmd.Flags().GetString("system")

		c := &conversation{cmd: cmd}
		if system != "" {
			c.messages = append(c.messages, chatgpt.NewSystemMessage(system))
		}

		if len(args) > 0 {
			if err := c.send(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
		}

		if !interactive {
			if len(args) == 0 {
				return fmt.Errorf("a prompt is required unless --interactive is set")
			}
			return nil
		}

		return c.loop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// conversation is the running context of a chat command.
type conversation struct {
	cmd      *cobra.Command
	messages []chatgpt.ChatMessage
}

func (c *conversation) request() (*chatgpt.ChatCompletionRequest, error) {
	req := chatgpt.NewChatCompletionRequest(cli.model(cli.cfg.ChatModel), c.messages)

	flags := c.cmd.Flags()

	if flags.Changed("temperature") {
		temperature, err := flags.GetFloat64("temperature")
		if err != nil {
			return nil, err
		}
		req.Temperature = &temperature
	}

	if flags.Changed("max-tokens") {
		maxTokens, err := flags.GetInt("max-tokens")
		if err != nil {
			return nil, err
		}
		req.MaxTokens = &maxTokens
	}

	return req, nil
}

// send adds content as a user message and prints the reply. The message is
// dropped again if the request fails.
func (c *conversation) send(ctx context.Context, content string) error {
	c.messages = append(c.messages, chatgpt.NewUserMessage(content))

	req, err := c.request()
	if err != nil {
		return err
	}

	resp, err := cli.client.CreateChatCompletion(ctx, req)
	cli.record(ctx, "/v1/chat/completions", req, resp, err)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return err
	}

	c.messages = append(c.messages, resp.Message())

	return cli.print(resp, func() error {
		return cli.out.Markdown(resp.Content())
	})
}

// loop reads one message per line until "exit", the end of input, or a
// canceled context.
func (c *conversation) loop(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)

	for {
		fmt.Fprint(w, cli.out.Number(">")+" ")

		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := c.send(ctx, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cli.out.Warn(err.Error())
		}
	}
}

func init() {
	chatCommand.Flags().BoolP("interactive", "i", false, "start an interactive session")
	chatCommand.Flags().String("system", "", "system message that starts the conversation")
	chatCommand.Flags().Float64("temperature", 1, "sampling temperature")
	chatCommand.Flags().Int("max-tokens", 0, "maximum number of tokens to generate")

	rootCmd.AddCommand(chatCommand)
}
