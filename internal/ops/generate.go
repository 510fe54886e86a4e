package ops

import (
	"context"
	"fmt"

	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/errors"
	"github.com/mspaans/vocabsync/internal/settings"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	// Input is a word, a multi-word phrase, or a quoted idiom.
	Input string
	Prefs settings.Prefs

	// Background applies to the remote half of each resulting create.
	Background bool
}

// GenerateOutput reports the generated entries and how many of them made
// it to each store.
type GenerateOutput struct {
	Entries []*entry.Entry `json:"entries"`
	Context string         `json:"context,omitempty"`
	Saved   int            `json:"saved"`
	Synced  int            `json:"synced"`
}

// Generate runs user input through the generation client and creates every
// resulting entry. Empty or malformed model output surfaces as a
// "nothing found" error, never a crash.
func Generate(ctx context.Context, d Deps, input GenerateInput) (*GenerateOutput, error) {
	if input.Input == "" {
		return nil, errors.NewInvalidRequest("input must not be empty")
	}

	result, err := d.Gen.Generate(ctx, input.Input, input.Prefs)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	if result.Empty() {
		return nil, errors.NewGenerationEmpty(input.Input)
	}

	out := &GenerateOutput{Context: result.Context}
	for _, e := range result.Entries {
		created, err := Create(ctx, d, CreateInput{Entry: e, Background: input.Background})
		if err != nil {
			// Local persistence failures abort: the store must not
			// silently lose generated data.
			return nil, err
		}
		out.Entries = append(out.Entries, e)
		out.Saved++
		if created.Synced {
			out.Synced++
		}
	}
	return out, nil
}
