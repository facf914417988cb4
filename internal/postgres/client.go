package postgres

import (
	"context"
)

// IClient is the narrow transactional interface the service layer depends on.
// *DB implements it; tests substitute an in-memory no-op client.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewClient exposes the DB as an IClient for dependency injection
func NewClient(db *DB) IClient {
	return db
}
