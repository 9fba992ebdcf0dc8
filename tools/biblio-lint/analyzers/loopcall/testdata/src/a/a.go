package a

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorDB interface {
	Save(ctx context.Context, bbid string) error
}

type StateCache interface {
	InvalidateState(ctx context.Context, bbids ...string) error
}

func bad(ctx context.Context, bbids []string, e Embedder, db VectorDB, c StateCache) {
	for _, bbid := range bbids {
		e.Embed(ctx, bbid)           // want "potential N\\+1: Embed called inside loop - use EmbedBatch"
		db.Save(ctx, bbid)           // want "potential N\\+1: Save called inside loop - use SaveBatch"
		c.InvalidateState(ctx, bbid) // want "potential N\\+1: InvalidateState called inside loop"
	}
}

func good(ctx context.Context, bbids []string, e Embedder, c StateCache) {
	e.EmbedBatch(ctx, bbids)
	c.InvalidateState(ctx, bbids...)
	for _, bbid := range bbids {
		_ = len(bbid)
	}
}
