package narrative

import (
	"context"
	"encoding/json"
)

// Intent is the routed destination for a free-form user message. Both fields
// are empty when the model could not map the message to a known function.
type Intent struct {
	Plugin   string `json:"plugin"`
	Function string `json:"function"`
}

// IntentRouter maps free-form input onto chat commands using the model.
// Routing failures degrade to plain chat, never to an error the user sees.
type IntentRouter struct {
	generator *Generator
}

func NewIntentRouter(generator *Generator) *IntentRouter {
	return &IntentRouter{generator: generator}
}

func (r *IntentRouter) Route(ctx context.Context, userInput string) Intent {
	prompt, err := RenderPrompt(routerPrompt, map[string]any{
		"user_input": userInput,
	})
	if err != nil {
		return Intent{}
	}

	raw, err := r.generator.complete(ctx, prompt)
	if err != nil {
		return Intent{}
	}

	var intent Intent
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &intent); err != nil {
		return Intent{}
	}
	return intent
}
