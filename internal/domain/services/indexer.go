package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

const reindexPageSize = 100

// IndexerOptions tunes reindexing.
type IndexerOptions struct {
	// Concurrency is the number of pages processed at once.
	Concurrency int
	// RequestsPerSecond limits embedding calls; zero means unlimited.
	RequestsPerSecond float64
}

// Indexer embeds entity states and stores them in the search index.
type Indexer struct {
	vectorDB    ports.VectorDB
	embedder    ports.Embedder
	store       *EntityStore
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewIndexer creates a new Indexer.
func NewIndexer(vectorDB ports.VectorDB, embedder ports.Embedder, store *EntityStore, opts IndexerOptions, logger *slog.Logger) *Indexer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		vectorDB:    vectorDB,
		embedder:    embedder,
		store:       store,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// BuildDocument renders the searchable text of a live entity state.
func BuildDocument(state *entities.EntityState) entities.SearchDocument {
	doc := entities.SearchDocument{
		BBID:       state.Entity.BBID,
		Kind:       state.Entity.Kind,
		RevisionID: state.Revision.ID,
	}
	if state.Data == nil {
		return doc
	}
	doc.Name = state.Data.DisplayName()
	if state.Data.Disambiguation != nil {
		doc.Disambiguation = state.Data.Disambiguation.Comment
	}

	var b strings.Builder
	b.WriteString(string(state.Entity.Kind))
	b.WriteString(": ")
	b.WriteString(doc.Name)
	if doc.Disambiguation != "" {
		fmt.Fprintf(&b, " (%s)", doc.Disambiguation)
	}
	for _, a := range state.Data.Aliases {
		if a.Name != doc.Name {
			b.WriteString("\nalso known as ")
			b.WriteString(a.Name)
		}
	}
	for _, id := range state.Data.Identifiers {
		b.WriteString("\nidentifier ")
		b.WriteString(id.Value)
	}
	if state.Data.Annotation != nil {
		b.WriteString("\n")
		b.WriteString(state.Data.Annotation.Content)
	}
	doc.Text = b.String()
	return doc
}

// IndexState embeds and stores one live entity state.
func (ix *Indexer) IndexState(ctx context.Context, state *entities.EntityState) error {
	if state.IsDeleted() {
		return ix.Remove(ctx, state.Entity.BBID)
	}
	doc := BuildDocument(state)
	if err := ix.limiter.Wait(ctx); err != nil {
		return err
	}
	embedding, err := ix.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", doc.BBID, err)
	}
	doc.Embedding = embedding
	if err := ix.vectorDB.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving document %s: %w", doc.BBID, err)
	}
	return nil
}

// Remove drops an entity from the index.
func (ix *Indexer) Remove(ctx context.Context, bbid string) error {
	if err := ix.vectorDB.Delete(ctx, bbid); err != nil {
		return fmt.Errorf("removing document %s: %w", bbid, err)
	}
	return nil
}

// Reindex pushes every live entity to the index and removes deleted ones.
// It returns the number of documents saved.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	total, err := ix.store.CountCurrent(ctx, "")
	if err != nil {
		return 0, err
	}

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for offset := 0; offset < total; offset += reindexPageSize {
		g.Go(func() error {
			n, err := ix.indexPage(gctx, offset)
			if err != nil {
				return fmt.Errorf("indexing page at offset %d: %w", offset, err)
			}
			indexed.Add(int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(indexed.Load()), err
	}
	ix.logger.Info("reindex finished", "entities", total, "indexed", indexed.Load())
	return int(indexed.Load()), nil
}

func (ix *Indexer) indexPage(ctx context.Context, offset int) (int, error) {
	list, err := ix.store.ListCurrent(ctx, "", offset, reindexPageSize)
	if err != nil {
		return 0, err
	}

	docs := make([]entities.SearchDocument, 0, len(list))
	for _, e := range list {
		state, err := ix.store.loadCurrent(ctx, e.BBID)
		if err != nil {
			return 0, err
		}
		if state.IsDeleted() {
			if err := ix.Remove(ctx, e.BBID); err != nil {
				return 0, err
			}
			continue
		}
		docs = append(docs, BuildDocument(state))
	}
	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}
	if err := ix.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}
	if len(embeddings) != len(docs) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d documents", len(embeddings), len(docs))
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}

	if err := ix.vectorDB.SaveBatch(ctx, docs); err != nil {
		return 0, fmt.Errorf("saving batch: %w", err)
	}
	reindexedTotal.Add(float64(len(docs)))
	return len(docs), nil
}
