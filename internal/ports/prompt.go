package ports

import (
	"context"
	"errors"

	"mafiaville/internal/domain"
)

// ErrNoResponse is returned by collaborators when a player did not answer in time.
var ErrNoResponse = errors.New("no response")

// PromptPort asks a single player for a night choice.
type PromptPort interface {
	// Ask delivers the prompt once and waits for the answer until ctx is done.
	// A missing answer is reported as ErrNoResponse or the context error.
	Ask(ctx context.Context, prompt domain.ActionPrompt) (domain.Answer, error)
}
