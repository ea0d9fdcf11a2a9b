package cache

import (
	"context"
	"strings"
)

// ResponseCache stores generated answers keyed by model and question so
// repeated questions are served without touching a provider or a ledger.
type ResponseCache interface {
	Get(ctx context.Context, model, message string) (string, bool, error)
	Set(ctx context.Context, model, message, answer string) error
}

const keyPrefixLen = 50

// Key derives the cache key for a model/question pair. Only the first 50
// characters of the question participate, so long questions that share a
// prefix resolve to the same entry.
func Key(model, message string) string {
	if len(message) > keyPrefixLen {
		message = message[:keyPrefixLen]
	}
	return strings.ToLower(model) + "|" + message
}
