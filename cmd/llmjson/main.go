// Command llmjson is a debugging tool over the llmjson library: it extracts,
// repairs and validates JSON from model output, and sends chat requests to an
// OpenAI-compatible endpoint.
//
// Settings come from LLMJSON_* environment variables and an optional .env
// file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
