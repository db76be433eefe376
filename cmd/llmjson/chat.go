package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/llmjson/core/client"
	"github.com/leofalp/llmjson/internal/config"
	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/ai"
	"github.com/leofalp/llmjson/providers/observability/slogobs"
)

type chatOptions struct {
	prompt      string
	system      string
	model       string
	asJSON      bool
	maxAttempts int
	temperature float64
	envFile     string
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one prompt to the configured endpoint",
		Long: "Sends a prompt to the OpenAI-compatible endpoint from LLMJSON_BASE_URL. " +
			"With --json the reply goes through extraction and lenient decoding, with retries.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "user prompt (required)")
	flags.StringVar(&opts.system, "system", "", "system prompt")
	flags.StringVar(&opts.model, "model", "", "model name, overrides LLMJSON_MODEL")
	flags.BoolVar(&opts.asJSON, "json", false, "extract and decode JSON from the reply")
	flags.IntVar(&opts.maxAttempts, "max-attempts", 0, "attempt budget for --json, overrides LLMJSON_MAX_ATTEMPTS")
	flags.Float64Var(&opts.temperature, "temperature", -1, "sampling temperature; negative leaves the provider default")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runChat(cmd *cobra.Command, opts *chatOptions) error {
	settings, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	if settings.Client.APIKey == "" && settings.Client.BaseURL == "" {
		return errors.New(config.EnvAPIKey + " is not set")
	}

	observer := slogobs.New(
		slogobs.WithLevel(settings.LogLevel),
		slogobs.WithFormat(settings.LogFormat),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	)

	c, err := client.New(settings.Client, client.WithObserver(observer))
	if err != nil {
		return err
	}

	request := ai.ChatRequest{
		Model:        opts.model,
		SystemPrompt: opts.system,
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: opts.prompt}},
	}
	if opts.temperature >= 0 {
		request.Temperature = utils.Ptr(opts.temperature)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !opts.asJSON {
		res, err := c.Chat(ctx, request)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Content)
		fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d, cost: $%.6f\n", res.Usage.TotalTokens, res.Cost)
		return nil
	}

	res, err := client.ChatJSON[any](ctx, c, request, opts.maxAttempts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, utils.JSONToString(res.Data, true))
	fmt.Fprintf(cmd.ErrOrStderr(), "attempts: %d, tokens: %d, cost: $%.6f\n", res.Attempts, res.Usage.TotalTokens, res.Cost)
	return nil
}
