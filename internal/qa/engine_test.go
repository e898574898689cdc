package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yasminekh/trendgate/internal/llm"
	"github.com/yasminekh/trendgate/internal/retrieval"
)

func TestAskTruncatesHistory(t *testing.T) {
	index := retrieval.NewFake()

	// The fake ignores history, so count it through a wrapper.
	var gotHistory int
	engine := NewEngine(historySpy{index, &gotHistory}, "vs_base")

	history := make([]llm.Message, 20)
	for i := range history {
		history[i] = llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("m%d", i)}
	}

	if _, err := engine.Ask(context.Background(), "vs_1", "q", history); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if gotHistory != maxHistory {
		t.Errorf("history length = %d, want %d", gotHistory, maxHistory)
	}
}

type historySpy struct {
	retrieval.Index
	n *int
}

func (s historySpy) Answer(ctx context.Context, indexID, question string, history []llm.Message) (string, error) {
	*s.n = len(history)
	return s.Index.Answer(ctx, indexID, question, history)
}

func TestFutureMapParsesModelOutput(t *testing.T) {
	index := retrieval.NewFake()
	index.AnswerFunc = func(indexID, question string) (string, error) {
		if indexID != "vs_base" {
			t.Errorf("future map queried index %s, want vs_base", indexID)
		}
		if !strings.Contains(question, `"Circular Fashion"`) {
			t.Errorf("prompt missing theme: %s", question)
		}
		return `{"theme":"Circular Fashion","lenses":{"planet_sustainability":["resale grows"]}}`, nil
	}

	engine := NewEngine(index, "vs_base")

	fm, err := engine.FutureMap(context.Background(), "Circular Fashion")
	if err != nil {
		t.Fatalf("FutureMap: %v", err)
	}
	if fm.Theme != "Circular Fashion" {
		t.Errorf("theme = %q", fm.Theme)
	}
	if len(fm.Lenses.PlanetSustainability) != 1 {
		t.Errorf("lenses = %+v", fm.Lenses)
	}
}

func TestFutureMapAnswerError(t *testing.T) {
	index := retrieval.NewFake()
	index.AnswerErr = errors.New("upstream down")

	engine := NewEngine(index, "vs_base")
	if _, err := engine.FutureMap(context.Background(), "X"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseFutureMap(t *testing.T) {
	direct := `{"theme":"T","lenses":{"profit_models":["subscriptions"]}}`

	fm, err := parseFutureMap(direct)
	if err != nil {
		t.Fatalf("direct JSON: %v", err)
	}
	if fm.Theme != "T" {
		t.Errorf("theme = %q", fm.Theme)
	}

	wrapped := "Here is the map:\n```json\n" + direct + "\n```\nHope that helps."
	fm, err = parseFutureMap(wrapped)
	if err != nil {
		t.Fatalf("wrapped JSON: %v", err)
	}
	if len(fm.Lenses.ProfitModels) != 1 {
		t.Errorf("lenses = %+v", fm.Lenses)
	}

	if _, err := parseFutureMap("I cannot build a future map."); err == nil {
		t.Error("prose without JSON should fail")
	}
	if _, err := parseFutureMap("prefix {not json} suffix"); err == nil {
		t.Error("malformed braces should fail")
	}
}
