package cmd

import (
	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/tagger"
)

// noRefine disables the model-assisted tag refinement pass; ingestion then
// relies on filename heuristics and caller-supplied tags only.
var noRefine bool

func tagRefiner(provider llm.Provider, model string) *tagger.Refiner {
	if noRefine {
		return nil
	}
	if provider.Name() != "openai" {
		// Non-OpenAI providers refine with their own default model; the
		// configured model names the answering model.
		model = ""
	}
	return tagger.NewRefiner(provider, model)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noRefine, "no-refine", false, "skip model-assisted tag refinement during ingestion")
}
