package client

import (
	"errors"
	"strings"

	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/ai"
)

// retryTemperature is the highest sampling temperature used after the first
// attempt.
const retryTemperature = 0.1

// feedbackMessage describes why the previous completion was rejected. It
// returns "" for failures the model cannot fix, such as network errors.
func feedbackMessage(err error, schemaJSON string) string {
	var problems []string

	var (
		validationErr *ValidationError
		extractionErr *ExtractionError
	)
	switch {
	case errors.As(err, &validationErr):
		for _, v := range validationErr.Violations {
			problems = append(problems, v.String())
		}
	case errors.As(err, &extractionErr):
		if extractionErr.Err != nil {
			problems = append(problems, "the JSON could not be decoded: "+extractionErr.Err.Error())
		} else {
			problems = append(problems, "no JSON object or array was found in the response")
		}
	default:
		return ""
	}

	var b strings.Builder
	b.WriteString("Your previous response could not be used:\n")
	for _, problem := range problems {
		b.WriteString("- ")
		b.WriteString(problem)
		b.WriteByte('\n')
	}
	b.WriteString("\nReply with a single JSON value that fixes these problems. Do not add prose or markdown fences.")

	if schemaJSON != "" {
		b.WriteString("\n\nThe JSON must match this JSON Schema:\n")
		b.WriteString(schemaJSON)
	}

	return b.String()
}

// retryRequest derives the request for a retry: the original messages plus the
// feedback, with the temperature capped at retryTemperature.
func retryRequest(original ai.ChatRequest, feedback string) ai.ChatRequest {
	request := original.Clone()

	if request.Temperature == nil || *request.Temperature > retryTemperature {
		request.Temperature = utils.Ptr(retryTemperature)
	}

	if feedback != "" {
		request.Messages = append(request.Messages, ai.Message{Role: ai.RoleUser, Content: feedback})
	}
	return request
}
