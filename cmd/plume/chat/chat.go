// Package chatcmder provides the chat command for interactive LLM chat
// through the plume gateway.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/plumechat/plume/pkg/cliui"
	"github.com/plumechat/plume/pkg/config"
	"github.com/plumechat/plume/pkg/llm"
	"github.com/plumechat/plume/pkg/logger"
)

var (
	userPrompt      = cliui.PromptStyle.Render("you> ")
	assistantPrompt = cliui.AssistantStyle.Render("assistant> ")
)

type chatCommander struct {
	target string
	model  string
	system string
	debug  bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session through the plume gateway.

The chat command sends messages to an LLM through the configured gateway,
which normalizes the provider's streaming format into plain text. Because
the gateway emits raw text deltas, the client just prints whatever arrives.

Examples:
  plume chat --model llama3.2
  plume chat --model llama3.2 --target http://localhost:8080
  plume chat --system "You are a pirate."`

const chatShortDesc string = "Interactive LLM chat through the plume gateway"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.Target
			}

			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Client.Model
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.target, "target", "t", defaults.Client.Target, "Plume gateway URL")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Client.Model, "Model name (e.g. llama3.2, gpt-4o-mini)")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt for the conversation")

	return cmd
}

func (c *chatCommander) run() error {
	// Pretty CLI logging on stderr keeps debug output clear of the
	// streamed reply on stdout.
	c.logger = logger.New(
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
		logger.WithWriter(os.Stderr),
	)

	var messages []llm.Message

	fmt.Println()
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(c.model),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		// Append user message
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: input,
		})

		// Send to gateway and stream response
		assistantContent, err := c.sendAndStream(messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %s\n", cliui.FailMark, cliui.ErrStyle.Render(err.Error()))
			// Remove the failed user message so we can retry
			messages = messages[:len(messages)-1]
			continue
		}

		// Append assistant response to history
		messages = append(messages, llm.Message{
			Role:    "assistant",
			Content: assistantContent,
		})

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// sendAndStream sends a chat request to the gateway and streams the response
// to stdout. The gateway emits raw UTF-8 text with no framing, so the bytes
// read from the body are the assistant's reply verbatim.
// Returns the full assistant response text.
func (c *chatCommander) sendAndStream(messages []llm.Message) (string, error) {
	streaming := true
	reqBody := llm.ChatRequest{
		Model:        c.model,
		Messages:     messages,
		SystemPrompt: c.system,
		Stream:       &streaming,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"target", c.target,
		"model", c.model,
		"message_count", len(messages),
	)

	url := c.target + "/api/chat"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// LLM responses can be slow
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// Stream the response
	fmt.Print(assistantPrompt)

	var fullContent strings.Builder
	buf := make([]byte, 4096)

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			fmt.Print(string(chunk))
			fullContent.Write(chunk)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fullContent.String(), fmt.Errorf("reading stream: %w", err)
		}
	}

	return fullContent.String(), nil
}
