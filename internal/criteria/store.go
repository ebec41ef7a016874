// Package criteria retrieves diagnostic-criteria reference text relevant to a conversation.
package criteria

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

// Searcher returns up to k reference passages relevant to query.
type Searcher interface {
	Search(ctx context.Context, sessionID, query string, k int) ([]string, error)
}

var tracer = otel.Tracer("mindscreen.internal.criteria")

// MemoryStore keeps embedded criteria documents in memory and ranks them by cosine similarity.
type MemoryStore struct {
	embedder Embedder
	logger   *logging.Logger

	mu   sync.RWMutex
	docs []storedDocument
}

type storedDocument struct {
	doc       Document
	embedding []float32
}

func NewMemoryStore(embedder Embedder, logger *logging.Logger) *MemoryStore {
	if embedder == nil {
		panic("criteria: embedder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{embedder: embedder, logger: logger}
}

// Add embeds docs in batches of batchSize, running batches concurrently.
func (s *MemoryStore) Add(ctx context.Context, docs []Document, batchSize int) error {
	if len(docs) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 8
	}

	embedded := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(docs); start += batchSize {
		start := start
		end := min(start+batchSize, len(docs))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, doc := range docs[start:end] {
				texts = append(texts, doc.Text)
			}
			vecs, err := s.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("criteria: embedder returned %d vectors for %d texts", len(vecs), len(texts))
			}
			copy(embedded[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("criteria: embed documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.docs = append(s.docs, storedDocument{doc: doc, embedding: embedded[i]})
	}
	s.logger.Info("criteria documents indexed", "added", len(docs), "total", len(s.docs))
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryStore) Search(ctx context.Context, sessionID, query string, k int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "criteria.search")
	defer span.End()
	span.SetAttributes(attribute.String("mindscreen.session_id", sessionID))

	if k <= 0 {
		k = 3
	}
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("criteria: embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	queryVec := vecs[0]

	s.mu.RLock()
	type scored struct {
		score   float64
		content string
	}
	results := make([]scored, 0, len(s.docs))
	for _, d := range s.docs {
		results = append(results, scored{score: cosineSimilarity(queryVec, d.embedding), content: d.doc.Text})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	limit := min(k, len(results))
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].content
	}
	span.SetAttributes(attribute.Int("mindscreen.criteria.results", limit))
	s.logger.Debug("criteria search", "session_id", sessionID, "results", limit)
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
