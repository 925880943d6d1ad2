package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/config"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// Model wraps langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration. A nil collector
// disables usage recording.
func NewModel(cfg config.Config, collector *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		metrics:   collector,
	}, nil
}

// Generate generates text based on a prompt.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if m.metrics != nil {
		m.metrics.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	}
	return response, nil
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate with system: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	if m.metrics != nil {
		in, out := tokenCounts(response.Choices[0].GenerationInfo)
		m.metrics.RecordLLMUsage(metrics.OpLLMGenerate, time.Since(start), in, out)
	}

	return response.Choices[0].Content, nil
}

// tokenCounts pulls prompt/completion token counts out of the provider's
// generation info. Providers that report nothing yield zeros.
func tokenCounts(info map[string]any) (int64, int64) {
	return tokenCount(info, "PromptTokens"), tokenCount(info, "CompletionTokens")
}

func tokenCount(info map[string]any, key string) int64 {
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// SynthesizeAnswer generates a natural-language answer about catalog tables
// from ranked retrieval results.
func (m *Model) SynthesizeAnswer(ctx context.Context, query string, results []models.RankedResult) (string, error) {
	systemPrompt := `You are a data catalog assistant. Answer the user's question based ONLY on the provided table metadata.
If the metadata doesn't contain enough information to answer the question, say so.
Be concise and name the specific tables you base your answer on.`

	userPrompt := fmt.Sprintf(`Table metadata:
%s

Question: %s

Answer:`, FormatResults(results), query)

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}

// ExplainSimilarity generates an explanation of why two tables were flagged
// as potential duplicates, based on their component scores.
func (m *Model) ExplainSimilarity(ctx context.Context, score models.SimilarityScore) (string, error) {
	systemPrompt := `You are a data governance assistant. Explain in plain language why two tables
were flagged as potential duplicates, based ONLY on the similarity breakdown provided.
Be concise and mention the strongest and weakest signals.`

	userPrompt := fmt.Sprintf(`Tables: %s and %s
Overall score: %.3f (%s confidence)
Semantic similarity: %.3f
Schema overlap: %.3f
Statistical similarity: %.3f
Relationship overlap: %.3f
Matching columns: %d

Explanation:`,
		score.SourceTable, score.TargetTable,
		score.TotalScore, score.Confidence,
		score.SemanticScore, score.SchemaScore,
		score.StatisticalScore, score.RelationshipScore,
		len(score.MatchingColumns))

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}

// FormatResults renders ranked results as a plain-text context block for
// answer synthesis.
func FormatResults(results []models.RankedResult) string {
	if len(results) == 0 {
		return "(no tables found)"
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (platform: %s, rows: %d, score: %.3f)\n", i+1, r.EntityID, r.Platform, r.RowCount, r.FinalScore)
		if r.Reasoning != "" {
			fmt.Fprintf(&b, "   %s\n", r.Reasoning)
		}
	}
	return b.String()
}
