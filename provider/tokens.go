package provider

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/linanwx/minichat/logger"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

// estimateTokens approximates the prompt size with the cl100k encoding.
// Backends tokenize differently; the figure is only used for logging.
func estimateTokens(messages []Message) int {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
		if codecErr != nil {
			logger.Warn("tokenizer unavailable, estimating from length", "err", codecErr)
		}
	})

	total := 0
	for _, m := range messages {
		if codecErr != nil {
			total += len(m.Content) / 4
			continue
		}
		ids, _, err := codec.Encode(m.Content)
		if err != nil {
			total += len(m.Content) / 4
			continue
		}
		total += len(ids)
	}
	return total
}
