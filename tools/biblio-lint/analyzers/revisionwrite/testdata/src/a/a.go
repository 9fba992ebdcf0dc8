package a

import "context"

type RelationalDB interface {
	CommitEntity(ctx context.Context, bbid string) error
	CommitRelationship(ctx context.Context, id string) error
	FindEntity(ctx context.Context, bbid string) error
}

func bad(ctx context.Context, db RelationalDB) {
	db.CommitEntity(ctx, "x")       // want "CommitEntity called outside the mutation service"
	db.CommitRelationship(ctx, "y") // want "CommitRelationship called outside the mutation service"
}

func good(ctx context.Context, db RelationalDB) {
	db.FindEntity(ctx, "x")
}
