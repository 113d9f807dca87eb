package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/sashabaranov/go-openai"
)

// maxContextFindings bounds how many findings per group go into the prompt
const maxContextFindings = 5

// OpenAIExplainer implements Explainer using OpenAI chat completions
type OpenAIExplainer struct {
	client ChatClient
	model  string
}

// ExplainerConfig holds configuration for the explainer
type ExplainerConfig struct {
	APIKey string
	Model  string
}

// NewOpenAIExplainer creates a new OpenAI-backed explainer. With an empty
// API key the explainer still constructs, but Explain returns
// ErrorCodeExplainUnavailable until a key is provided.
func NewOpenAIExplainer(config ExplainerConfig) *OpenAIExplainer {
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	var client ChatClient
	if config.APIKey != "" {
		client = openai.NewClient(config.APIKey)
	}
	return &OpenAIExplainer{
		client: client,
		model:  model,
	}
}

// NewOpenAIExplainerWithClient creates an explainer around an existing client
func NewOpenAIExplainerWithClient(client ChatClient, model string) *OpenAIExplainer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExplainer{
		client: client,
		model:  model,
	}
}

// Explain generates a learner-facing explanation of the analysis result
func (e *OpenAIExplainer) Explain(ctx context.Context, result *core.AnalysisResult) (*Explanation, error) {
	if result == nil {
		return nil, core.NewError(fmt.Errorf("analysis result is required"), core.ErrorCodeInvalidInput, nil)
	}
	if e.client == nil {
		return nil, core.NewError(
			fmt.Errorf("no OpenAI API key configured"),
			core.ErrorCodeExplainUnavailable,
			nil,
		)
	}
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.getSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: e.buildExplainPrompt(result),
			},
		},
		Temperature: 0.1, // Low temperature for consistent results
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, core.NewError(fmt.Errorf("failed to call OpenAI API: %w", err), core.ErrorCodeLLMAPI, map[string]any{
			"model":   e.model,
			"profile": result.Profile,
		})
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewError(fmt.Errorf("no response from OpenAI"), core.ErrorCodeNoLLMResponse, nil)
	}
	return &Explanation{
		Text:       cleanResponse(resp.Choices[0].Message.Content),
		Model:      e.model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// getSystemPrompt returns the system prompt for explanation generation
func (e *OpenAIExplainer) getSystemPrompt() string {
	return `You are a patient programming tutor. ` +
		`Your task is to explain the static analysis of a small code snippet to a learner.

IMPORTANT RULES:
1. Write plain prose, no markdown headings and no code fences
2. Start with one sentence describing what the snippet does overall
3. Explain the complexity estimates in everyday terms
4. Mention each reported issue once, with its line number when given
5. End with the single most useful improvement the learner could make
6. Keep the whole explanation under 200 words

Return only the explanation text.`
}

// buildExplainPrompt creates the user prompt from the analysis result
func (e *OpenAIExplainer) buildExplainPrompt(result *core.AnalysisResult) string {
	return fmt.Sprintf(`Explain this analysis to the learner:

%s
Write the explanation:`, buildAnalysisContext(result))
}

// buildAnalysisContext renders a compact textual summary of the result
func buildAnalysisContext(result *core.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROFILE: %s\n", result.Profile)
	fmt.Fprintf(&b, "LINES: %d total, %d code, %d comment, %d blank\n",
		result.Stats.TotalLines, result.Stats.CodeLines, result.Stats.CommentLines, result.Stats.BlankLines)
	if m := result.Metrics; m != nil {
		fmt.Fprintf(&b, "METRICS: cyclomatic complexity %d, max nesting %d, quality score %d/100\n",
			m.CyclomaticComplexity, m.MaxNestingDepth, m.QualityScore)
		fmt.Fprintf(&b, "ESTIMATED COMPLEXITY: time %s, space %s\n", m.TimeComplexity, m.SpaceComplexity)
	}
	if r := result.Report; r != nil {
		fmt.Fprintf(&b, "RISK LEVEL: %s, QUALITY RATING: %s\n", r.RiskLevel, r.QualityRating)
		writeFindings(&b, "QUALITY ISSUES", r.Quality)
		writeFindings(&b, "PERFORMANCE ISSUES", r.Performance)
		writeFindings(&b, "SECURITY ISSUES", r.Security)
		writeFindings(&b, "PATTERNS", r.Patterns)
		for i := range r.Suggestions {
			fmt.Fprintf(&b, "SUGGESTION (%s priority): %s\n", r.Suggestions[i].Priority, r.Suggestions[i].Message)
		}
	}
	fmt.Fprintf(&b, "EXECUTION: %d steps", len(result.Steps))
	if len(result.Steps) > 0 {
		first := result.Steps[0]
		last := result.Steps[len(result.Steps)-1]
		fmt.Fprintf(&b, ", from %q to %q", first.Description, last.Description)
	}
	b.WriteString("\n")
	return b.String()
}

// writeFindings appends one findings group, truncated to maxContextFindings
func writeFindings(b *strings.Builder, heading string, findings []core.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", heading, len(findings))
	limit := len(findings)
	if limit > maxContextFindings {
		limit = maxContextFindings
	}
	for i := 0; i < limit; i++ {
		f := findings[i]
		if f.Line > 0 {
			fmt.Fprintf(b, "- [%s] line %d: %s\n", f.Severity, f.Line, f.Message)
		} else {
			fmt.Fprintf(b, "- [%s] %s\n", f.Severity, f.Message)
		}
	}
	if len(findings) > limit {
		fmt.Fprintf(b, "- and %d more\n", len(findings)-limit)
	}
}

// cleanResponse strips markdown fences the model sometimes wraps replies in
func cleanResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```text")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
