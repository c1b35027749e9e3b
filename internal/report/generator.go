// Package report synthesizes the French OSINT summary for an enriched
// profile. A text-generation backend writes the report; when it is
// unreachable or returns nothing, a deterministic template takes over so
// the user always gets a summary.
package report

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datachat-io/datachat/pkg/anthropic"
	"github.com/datachat-io/datachat/pkg/ollama"
)

// systemPrompt frames the model as a report writer.
const systemPrompt = "Tu es un analyste OSINT senior. Rapports structurés, factuels, markdown."

// Generator produces a report body from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaGenerator runs the report through a local Ollama model.
type OllamaGenerator struct {
	client ollama.Client
	model  string
}

// NewOllamaGenerator wires the local backend.
func NewOllamaGenerator(client ollama.Client, model string) *OllamaGenerator {
	return &OllamaGenerator{client: client, model: model}
}

// Generate runs one completion with low temperature; reports should not
// get creative.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Generate(ctx, ollama.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		System:  systemPrompt,
		Options: ollama.Options{Temperature: 0.3, NumPredict: 2048},
	})
	if err != nil {
		return "", eris.Wrap(err, "report: ollama generate")
	}
	return strings.TrimSpace(resp.Response), nil
}

// AnthropicGenerator runs the report through the Anthropic API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator wires the hosted backend.
func NewAnthropicGenerator(client anthropic.Client, model string) *AnthropicGenerator {
	return &AnthropicGenerator{client: client, model: model}
}

// Generate runs one completion.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := 0.3
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   2048,
		System:      []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "report: anthropic generate")
	}
	resp.Usage.LogCost(g.model, "report")

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
