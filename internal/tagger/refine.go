package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yasminekh/trendgate/internal/llm"
)

// Refiner asks a completion model to improve heuristic tags. It is strictly
// best-effort: every failure mode yields "no opinion" so the ingestion
// pipeline never blocks on it.
type Refiner struct {
	provider llm.Provider
	model    string
}

// NewRefiner creates a Refiner. A nil provider disables refinement.
func NewRefiner(provider llm.Provider, model string) *Refiner {
	return &Refiner{provider: provider, model: model}
}

const refinePromptFormat = `You are tagging a trend report for a library.

Return STRICT JSON only, no markdown:
{"year":"", "company":"", "topics":[...]}

Rules:
- year: 4-digit year if clearly implied, else "".
- company: publisher/source if clearly implied from filename, else "".
- topics: 3-8 short topic tags in Title Case, deduplicated.

Filename: %s

Current guesses:
year=%s
company=%s
topics=%s`

// Refine returns model-refined tags for the filename, or nil when the model
// is unavailable, errors, or returns something unusable.
func (r *Refiner) Refine(ctx context.Context, filename string, base Tags) *Tags {
	if r == nil || r.provider == nil {
		return nil
	}

	prompt := fmt.Sprintf(refinePromptFormat,
		filename, base.Year, base.Company, strings.Join(base.Topics, ", "))

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model:     r.model,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 200,
		JSONMode:  true,
	})
	if err != nil {
		return nil
	}

	var parsed Tags
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &parsed); err != nil {
		return nil
	}

	// Keep the year only when it actually looks like one.
	if !yearPattern.MatchString(parsed.Year) {
		parsed.Year = ""
	}
	parsed.Company = strings.TrimSpace(parsed.Company)
	if len(parsed.Company) > maxCompanyLen {
		parsed.Company = parsed.Company[:maxCompanyLen]
	}

	var topics []string
	seen := map[string]bool{}
	for _, t := range parsed.Topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
		if len(topics) == maxTopics {
			break
		}
	}
	parsed.Topics = topics

	return &parsed
}
