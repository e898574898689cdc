package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/retrieval"
)

// maxHistory bounds how much prior conversation is replayed per question.
const maxHistory = 8

// Engine answers questions against retrieval indexes and synthesizes
// structured future maps from the shared library index.
type Engine struct {
	index       retrieval.Index
	baseIndexID string
}

// NewEngine creates an Engine. baseIndexID is the shared library index used
// for future maps.
func NewEngine(index retrieval.Index, baseIndexID string) *Engine {
	return &Engine{index: index, baseIndexID: baseIndexID}
}

// Ask answers a question grounded in the given session index, replaying at
// most the last eight history messages.
func (e *Engine) Ask(ctx context.Context, indexID, question string, history []llm.Message) (string, error) {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return e.index.Answer(ctx, indexID, question, history)
}

// Lenses are the seven perspectives a future map is built from.
type Lenses struct {
	PeopleAttitudesBehaviours []string `json:"people_attitudes_behaviours"`
	PoliticsRegulation        []string `json:"politics_regulation"`
	ProsperityEconomicFactors []string `json:"prosperity_economic_factors"`
	PlanetSustainability      []string `json:"planet_sustainability"`
	PlacesChannels            []string `json:"places_channels"`
	PotentialCapability       []string `json:"potential_capability"`
	ProfitModels              []string `json:"profit_models"`
}

// FutureMap is a themed synthesis across the whole report library.
type FutureMap struct {
	Theme  string `json:"theme"`
	Lenses Lenses `json:"lenses"`
}

const futureMapPromptFormat = `You are a trends research assistant. Use ONLY the documents in the vector store.

Task: Build a "Future Map" for the theme: "%s".

Return STRICT JSON only (no markdown, no commentary) with this exact shape:

{
  "theme": "...",
  "lenses": {
    "people_attitudes_behaviours": ["...", "...", "..."],
    "politics_regulation": ["...", "...", "..."],
    "prosperity_economic_factors": ["...", "...", "..."],
    "planet_sustainability": ["...", "...", "..."],
    "places_channels": ["...", "...", "..."],
    "potential_capability": ["...", "...", "..."],
    "profit_models": ["...", "...", "..."]
  }
}

Rules:
- 3-6 bullets per lens.
- Each bullet should be short (max ~120 chars), concrete, and insight-like (not generic).
- If evidence is weak for a lens, write a bullet starting with "NOT ENOUGH EVIDENCE:".`

// FutureMap builds a future map for the theme against the base library index.
func (e *Engine) FutureMap(ctx context.Context, theme string) (*FutureMap, error) {
	prompt := fmt.Sprintf(futureMapPromptFormat, theme)

	text, err := e.index.Answer(ctx, e.baseIndexID, prompt, nil)
	if err != nil {
		return nil, err
	}

	fm, err := parseFutureMap(text)
	if err != nil {
		return nil, err
	}
	return fm, nil
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// parseFutureMap decodes the model output, salvaging the outermost {...}
// block when the model wraps its JSON in prose.
func parseFutureMap(text string) (*FutureMap, error) {
	text = strings.TrimSpace(text)

	var fm FutureMap
	if err := json.Unmarshal([]byte(text), &fm); err == nil {
		return &fm, nil
	}

	block := jsonBlock.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("model did not return valid JSON")
	}
	if err := json.Unmarshal([]byte(block), &fm); err != nil {
		return nil, fmt.Errorf("model did not return valid JSON: %w", err)
	}
	return &fm, nil
}
