// Package s3 provides an S3 implementation of the blobstore.Store interface
// and a DynamoDB-backed snapshot pointer.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("trees/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	version, err := snapshot.Commit(ctx, store, snapshot.NewBlobPointer(store, "HEAD"), tree)
//
// # Features
//
//   - CRC32C-checked uploads, multipart above the configured part size
//   - Conditional creates (If-None-Match) for versioned snapshot names
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - DDBPointer for atomic version commits across writers
package s3
