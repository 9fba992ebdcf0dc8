package services

import "context"

type RelationalDB interface {
	CommitEntity(ctx context.Context, bbid string) error
}

func commit(ctx context.Context, db RelationalDB) error {
	return db.CommitEntity(ctx, "x")
}
