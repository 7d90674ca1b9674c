package store

import (
	"context"
	"errors"
)

// Collection names used by the service. Records are JSON documents grouped
// by collection and addressed by a single key, matching the legacy data
// layout (one file per record under a per-collection directory).
const (
	CollectionUsers     = "users"
	CollectionTokens    = "tokens"
	CollectionMenuItems = "menuitems"
	CollectionCarts     = "shoppingcarts"
	CollectionOrders    = "orders"
)

var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
)

// Store is a keyed record store. Each operation is atomic for its single
// key; there are no multi-key transactions. Create fails when the key is
// taken, which callers use as a mutual-exclusion primitive.
type Store interface {
	Create(ctx context.Context, collection, key string, record any) error
	Read(ctx context.Context, collection, key string, out any) error
	Update(ctx context.Context, collection, key string, record any) error
	Delete(ctx context.Context, collection, key string) error
	List(ctx context.Context, collection string) ([]string, error)
}
