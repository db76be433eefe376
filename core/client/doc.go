// Package client turns free-form LLM completions into typed, validated data.
//
// [Client.Chat] performs one raw completion. [ChatJSON] and
// [ChatJSONValidated] wrap it in a bounded retry loop: every attempt's
// content goes through the extraction cascade of core/parse, is validated,
// and on failure the next attempt is sent with a feedback message that names
// the problems and a lowered temperature.
//
// Failures are classified with [Classify]:
//
//   - timeouts, 5xx, transport errors and 429 are retried; 429 adds a longer
//     rate-limit wait
//   - extraction and validation failures are retried with feedback
//   - any other 4xx is returned immediately
//
// Cancelling the caller's context aborts the in-flight request or pending
// sleep and returns an error matching [ErrCancelled].
//
// Example:
//
//	c, err := client.New(client.Config{APIKey: key, Model: "gpt-4o-mini"})
//	if err != nil {
//	    return err
//	}
//	res, err := client.ChatJSONValidated(ctx, c, ai.ChatRequest{
//	    Messages: []ai.Message{{Role: ai.RoleUser, Content: "List two items as JSON."}},
//	}, validate.Struct[Payload](), 0)
package client
