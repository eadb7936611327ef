package store

import "context"

// Keys of the persisted session layout. Both are absent when logged out.
const (
	KeyAccessToken = "accessToken" // raw token string
	KeyUser        = "user"        // JSON encoded profile {id,name,email}
)

// Repo is a durable string key-value store that survives process restarts.
// Get returns errors.ErrKeyNotFound when the key is absent.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
