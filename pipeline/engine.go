package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/assemble"
	"github.com/smallnest/ragfusion/fusion"
	"github.com/smallnest/ragfusion/index"
	"github.com/smallnest/ragfusion/log"
	"github.com/smallnest/ragfusion/retriever"
	"github.com/smallnest/ragfusion/splitter"
)

// Config wires the engine's components. Embedder, Splitter and Index are
// required; the rest switch features on when present.
type Config struct {
	Embedder ragfusion.Embedder
	Splitter *splitter.SentenceSplitter
	Index    *index.FlatIndex

	// Store receives every chunk at indexing time and backs the structured
	// adapter at query time.
	Store ragfusion.StructuredStore
	// Hybrid backs the hybrid adapter when set.
	Hybrid ragfusion.HybridBackend
	// Generator produces the final answer. Without one, Query returns the
	// assembled context as the answer.
	Generator ragfusion.Generator

	// MaxResults bounds the fused context size. Default 5.
	MaxResults int
	// BudgetChars bounds the assembled context, 0 meaning unlimited.
	BudgetChars int
	// MaxRetries bounds how often an empty retrieval is retried. Default 2.
	MaxRetries int
	// AdapterTimeout bounds each adapter per query round. Default 10s.
	AdapterTimeout time.Duration

	Logger log.Logger
}

// Result is the outcome of a completed query workflow.
type Result struct {
	Answer          string
	Context         string
	ContextSegments int
	Fused           ragfusion.FusedContext
	Attempts        int
	Phase           Phase
}

// Engine runs indexing and the query workflow over the configured backends.
type Engine struct {
	cfg        Config
	dispatcher *retriever.Dispatcher
	logger     log.Logger
}

// NewEngine validates the config and assembles the adapter set.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Embedder == nil {
		return nil, &ragfusion.ConfigurationError{Field: "embedder", Reason: "required"}
	}
	if cfg.Splitter == nil {
		return nil, &ragfusion.ConfigurationError{Field: "splitter", Reason: "required"}
	}
	if cfg.Index == nil {
		return nil, &ragfusion.ConfigurationError{Field: "index", Reason: "required"}
	}

	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = retriever.DefaultAdapterTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetDefaultLogger()
	}

	retrievers := []ragfusion.Retriever{
		retriever.NewVectorRetriever(cfg.Embedder, cfg.Index,
			retriever.WithVectorLogger(cfg.Logger)),
	}
	if cfg.Store != nil {
		retrievers = append(retrievers,
			retriever.NewStructuredRetriever(cfg.Store,
				retriever.WithStructuredLogger(cfg.Logger)))
	}
	if cfg.Hybrid != nil {
		retrievers = append(retrievers,
			retriever.NewHybridRetriever(cfg.Embedder, cfg.Hybrid,
				retriever.WithHybridLogger(cfg.Logger)))
	}

	return &Engine{
		cfg: cfg,
		dispatcher: retriever.NewDispatcher(retrievers,
			retriever.WithAdapterTimeout(cfg.AdapterTimeout),
			retriever.WithDispatcherLogger(cfg.Logger)),
		logger: cfg.Logger,
	}, nil
}

// IndexDocuments splits the documents, embeds every chunk and rebuilds the
// vector index. Chunks also go to the structured store when one is
// configured. The whole batch succeeds or fails together.
func (e *Engine) IndexDocuments(ctx context.Context, documents []ragfusion.Document) (int, error) {
	chunks := e.cfg.Splitter.SplitDocuments(documents)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := e.cfg.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := e.cfg.Index.Build(chunks, vectors); err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	if e.cfg.Store != nil {
		if err := e.cfg.Store.Add(ctx, chunks); err != nil {
			return 0, fmt.Errorf("store chunks: %w", err)
		}
	}

	e.logger.Info("indexed %d documents into %d chunks", len(documents), len(chunks))
	return len(chunks), nil
}

// Query drives a query through the phased workflow until it reaches a
// terminal phase. It fails only on invalid input or a generation error;
// degraded backends and empty retrievals are handled inside the workflow.
func (e *Engine) Query(ctx context.Context, q ragfusion.Query) (*Result, error) {
	if q.K <= 0 {
		return nil, &ragfusion.InvalidArgumentError{
			Argument: "q.K",
			Reason:   fmt.Sprintf("must be positive, got %d", q.K),
		}
	}

	state := NewState(q)
	for !state.Phase.Terminal() {
		var err error
		state, err = e.step(ctx, state)
		if err != nil {
			return nil, err
		}
		state = Transition(state, e.cfg.MaxRetries)
	}

	if state.Phase == PhaseFailed {
		e.logger.Warn("query failed after %d attempts: %s", state.Attempt+1, state.FailureReason)
	}

	return &Result{
		Answer:          state.Answer,
		Context:         state.Context,
		ContextSegments: state.ContextSegments,
		Fused:           state.Fused,
		Attempts:        state.Attempt + 1,
		Phase:           state.Phase,
	}, nil
}

// step performs the work of the current phase and returns the state its
// phase handler left behind. Phase advancement happens in Transition.
func (e *Engine) step(ctx context.Context, s State) (State, error) {
	switch s.Phase {
	case PhasePlan:
		s.CurrentQuery = e.plan(s)
	case PhaseRetrieve:
		lists := e.dispatcher.Dispatch(ctx, s.CurrentQuery)
		fused, err := fusion.Fuse(lists, e.cfg.MaxResults)
		if err != nil {
			return s, fmt.Errorf("fuse results: %w", err)
		}
		s.Fused = fused
		e.logger.Debug("retrieve attempt %d: %d fused results", s.Attempt+1, len(fused.Results))
	case PhaseEvaluate:
		// Pure decision, handled entirely by Transition.
	case PhaseSummarize:
		s.Context, s.ContextSegments = assemble.Assemble(s.Fused, e.cfg.BudgetChars)
		if e.cfg.Generator == nil {
			s.Answer = s.Context
			break
		}
		answer, err := e.cfg.Generator.Generate(ctx, buildPrompt(s.OriginalQuery.Text, s.Context))
		if err != nil {
			return s, fmt.Errorf("generate answer: %w", err)
		}
		s.Answer = answer
	}
	return s, nil
}

// plan rewrites the query for the next retrieval round. The first attempt
// runs the caller's query untouched; retries drop the metadata filters to
// widen the candidate pool, which is the most common reason an exact-filter
// retrieval comes back empty.
func (e *Engine) plan(s State) ragfusion.Query {
	if s.Attempt == 0 {
		return s.OriginalQuery
	}

	q := s.OriginalQuery
	q.Filters = nil
	e.logger.Info("retry %d: dropping filters to widen retrieval", s.Attempt)
	return q
}

func buildPrompt(question, context string) string {
	return fmt.Sprintf(
		"Answer the question based on the provided context. "+
			"If the context does not contain the answer, say so.\n\n"+
			"Context:\n%s\n\nQuestion: %s",
		context, question)
}
