package blob

import "context"

// Store is the object storage the pipeline reads uploads back from. A
// failed read is a storage_error on the document, so implementations should
// wrap errors with enough context to debug the bucket/key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
