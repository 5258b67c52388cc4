package minio

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/arenatree/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreKey(t *testing.T) {
	assert.Equal(t, "a/b", NewStore(nil, "bucket", "a/").key("b"))
	assert.Equal(t, "b", NewStore(nil, "bucket", "").key("b"))
}

// TestMinioStore_Integration requires a running MinIO instance at
// ARENATREE_MINIO_ENDPOINT.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("ARENATREE_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: ARENATREE_MINIO_ENDPOINT not set")
	}

	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-arenatree"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)

	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, fmt.Sprintf("test-%d/", time.Now().UnixNano()))

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "snap/test.bin", data))

	got, err := store.Get(ctx, "snap/test.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "snap/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snap/test.bin"}, names)

	require.ErrorIs(t, blobstore.PutIfAbsent(ctx, store, "snap/test.bin", data), blobstore.ErrConflict)

	require.NoError(t, store.Delete(ctx, "snap/test.bin"))
	require.NoError(t, store.Delete(ctx, "snap/test.bin"))

	_, err = store.Get(ctx, "snap/test.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
