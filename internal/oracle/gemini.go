package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/coffeeisafruit/jv-matcher/internal/logger"
)

// GeminiOracle wraps a Gemini generative model as the §6 semantic_similarity
// oracle. It never returns an error to the caller: any API failure or
// unparsable response falls back to a wrapped Similarity (normally a
// JaccardOracle), matching §7's "oracle errors ... never fatal."
//
// Grounded on gdugdh-mpit2026-backend's internal/infrastructure/gemini
// client: same genai.Client/GenerativeModel pairing, same
// fallback-on-API-failure idiom, generalized from a dating-match-explanation
// prompt to a pairwise text-similarity prompt.
type GeminiOracle struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	fallback   Similarity
	log        logger.Logger
	onFallback func()
}

// NewGeminiOracle builds a GeminiOracle. fallback is invoked whenever the
// API call fails or the response can't be parsed as a float.
func NewGeminiOracle(ctx context.Context, apiKey, modelName string, fallback Similarity, log logger.Logger) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("oracle: failed to create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.0)

	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &GeminiOracle{client: client, model: model, fallback: fallback, log: log}, nil
}

// OnFallback registers a callback fired once for every batch that falls
// back to the wrapped Similarity, so callers can bump a metrics counter
// without the oracle package depending on internal/metrics.
func (g *GeminiOracle) OnFallback(fn func()) { g.onFallback = fn }

func (g *GeminiOracle) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// SimilarityBatch asks Gemini to score every pair in one prompt (satisfying
// §5's batching requirement without N round trips), and sends the whole
// batch to g.fallback when the response is short, malformed, or the call
// itself errors.
func (g *GeminiOracle) SimilarityBatch(ctx context.Context, pairs []Pair) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(g.prompt(pairs)))
	if err != nil {
		g.log.Warn("oracle: gemini call failed, falling back to jaccard", map[string]interface{}{"error": err.Error()})
		return g.fallbackAll(ctx, pairs)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return g.fallbackAll(ctx, pairs)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	scores, ok := parseScores(sb.String(), len(pairs))
	if !ok {
		g.log.Warn("oracle: gemini response unparsable, falling back to jaccard", nil)
		return g.fallbackAll(ctx, pairs)
	}
	return scores, nil
}

func (g *GeminiOracle) fallbackAll(ctx context.Context, pairs []Pair) ([]float64, error) {
	if g.onFallback != nil {
		g.onFallback()
	}
	return g.fallback.SimilarityBatch(ctx, pairs)
}

func (g *GeminiOracle) prompt(pairs []Pair) string {
	var sb strings.Builder
	sb.WriteString("Score the semantic similarity of each text pair below on a scale from 0.00 (unrelated) to 1.00 (equivalent meaning).\n")
	sb.WriteString("Output exactly one number per line, in order, nothing else.\n\n")
	for i, p := range pairs {
		fmt.Fprintf(&sb, "%d. A: %q  B: %q\n", i+1, p.A, p.B)
	}
	return sb.String()
}

// parseScores extracts exactly want floats from Gemini's response text, one
// per non-empty line, tolerating a leading "N." ordinal prefix.
func parseScores(text string, want int) ([]float64, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]float64, 0, want)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			if idx := strings.IndexAny(line, ".)"); idx > 0 && idx < 4 {
				if _, aerr := strconv.Atoi(line[:idx]); aerr == nil {
					v, err = strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
				}
			}
		}
		if err != nil {
			continue
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out = append(out, v)
	}
	return out, len(out) == want
}
