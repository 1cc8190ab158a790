// Hybrid Retrieval Fusion Pipeline
//
// The ragfusion package provides the shared data model and interfaces for a
// hybrid retrieval-augmented generation (RAG) pipeline: documents are split
// into overlapping chunks, embedded and indexed, retrieved concurrently from
// several backends, fused into one deduplicated context and rendered into a
// bounded text block for a downstream generator.
//
// # Components
//
//   - splitter: sentence-aware document chunking
//   - loader: text, static, HTML and Markdown document loaders
//   - index: brute-force exact L2 vector index with persistence
//   - embedding: OpenAI and deterministic mock embedders
//   - retriever: vector, structured and hybrid adapters plus concurrent dispatch
//   - store: in-memory, SQLite, Redis and Postgres retrieval backends
//   - fusion: source-priority merge and deduplication
//   - assemble: budgeted context rendering
//   - pipeline: end-to-end engine and retrieval workflow
//
// # Quick Start
//
//	emb := embedding.NewMockEmbedder(64)
//	split, _ := splitter.NewSentenceSplitter(400, 50)
//	idx, _ := index.NewFlatIndex(emb.GetDimension())
//
//	eng, _ := pipeline.NewEngine(pipeline.Config{
//		Embedder: emb,
//		Splitter: split,
//		Index:    idx,
//		Store:    store.NewMemoryStore(),
//	})
//
//	_, _ = eng.IndexDocuments(ctx, docs)
//	result, _ := eng.Query(ctx, ragfusion.Query{Text: "What does Medicare cover?", K: 3})
//
// # Data Flow
//
// Build time: raw documents -> splitter -> embedder -> index.
// Query time: query -> parallel retriever adapters -> fusion -> assemble ->
// (external) generator.
//
// Retrieval sources carry a fixed trust order, Hybrid > Vector > Structured:
// the hybrid backend combines both semantic and structured signals, while a
// pure structured match carries no semantic ranking and yields to ranked
// sources when duplicated.
package ragfusion // import "github.com/smallnest/ragfusion"
