package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
)

// maxAttempts bounds retries on malformed model output.
const maxAttempts = 3

// errNoChoices is returned when the model answers with no choices.
var errNoChoices = errors.New("model returned no choices")

// generateJSON sends content to the model in JSON mode and decodes the
// reply into out. Replies that fail to parse are retried; transport
// errors are returned immediately.
func generateJSON(ctx context.Context, client llms.Model, content []llms.MessageContent, out any, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err := client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return err
		}

		if len(response.Choices) < 1 {
			return errNoChoices
		}

		responseText := repairJSON(stripCodeFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), out); err != nil {
			lastErr = err
			logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		return nil
	}

	logger.Error("failed to parse model response after retries", "err", lastErr)
	return lastErr
}

func textMessage(role llms.ChatMessageType, text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  role,
		Parts: []llms.ContentPart{llms.TextPart(text)},
	}
}
