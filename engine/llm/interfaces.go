package llm

import (
	"context"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/sashabaranov/go-openai"
)

// Explainer turns a finished analysis into a plain-language explanation
type Explainer interface {
	Explain(ctx context.Context, result *core.AnalysisResult) (*Explanation, error)
}

// ChatClient is the slice of the OpenAI client the explainer depends on
type ChatClient interface {
	CreateChatCompletion(
		ctx context.Context,
		request openai.ChatCompletionRequest,
	) (openai.ChatCompletionResponse, error)
}

// Explanation carries the generated text plus generation metadata
type Explanation struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}
