// Package blobstore provides storage for arenatree snapshots.
//
// Store is the interface for writing and reading whole blobs by name.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with atomic replace
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO or any S3-compatible endpoint
//
// # Wrappers
//
//   - RateLimitedStore: throttles bytes per second against a remote backend
//   - Mirror: writes every blob to several stores in parallel
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, data) error
//	    Get(ctx, name) ([]byte, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
