package snapshot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	for name, store := range map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, tokens := sample(t)

			require.NoError(t, Save(ctx, store, "trees/sample.snap", a))

			b, err := Load[item](ctx, store, "trees/sample.snap")
			require.NoError(t, err)
			assert.Equal(t, []string{"root", "alpha", "gamma", "beta"}, preorderNames(b, tokens["root"]))

			_, err = Load[item](ctx, store, "trees/missing.snap")
			require.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}

func TestSaveLoadObservability(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a, _ := sample(t)

	var logs bytes.Buffer

	logger := arenatree.NewLogger(slog.NewJSONHandler(&logs, nil))
	mc := &arenatree.BasicMetricsCollector{}
	opts := []Option{WithLogger(logger), WithMetricsCollector(mc)}

	require.NoError(t, Save(ctx, store, "s", a, opts...))

	_, err := Load[item](ctx, store, "s", opts...)
	require.NoError(t, err)

	_, err = Load[item](ctx, store, "absent", opts...)
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.SnapshotCount)
	assert.Positive(t, stats.SnapshotBytes)
	assert.Equal(t, int64(2), stats.RestoreCount)
	assert.Equal(t, int64(1), stats.RestoreErrors)

	out := logs.String()
	assert.Contains(t, out, `"msg":"snapshot saved"`)
	assert.Contains(t, out, `"msg":"snapshot restored"`)
	assert.Contains(t, out, `"msg":"restore failed"`)
}

func TestCommitLatest(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ptr := NewBlobPointer(store, "HEAD")

	_, _, err := Latest[item](ctx, store, ptr)
	require.ErrorIs(t, err, ErrNoSnapshot)

	a, tokens := sample(t)

	for want := uint64(1); want <= 11; want++ {
		a.Node(tokens["alpha"]).Data.Weight = int(want)

		version, err := Commit(ctx, store, ptr, a)
		require.NoError(t, err)
		assert.Equal(t, want, version)
	}

	b, version, err := Latest[item](ctx, store, ptr)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), version)
	assert.Equal(t, 11, b.Node(tokens["alpha"]).Data.Weight)

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Len(t, names, 11)
	assert.Regexp(t, `^snapshots/00000000000000000011-[0-9a-f-]{36}\.snap$`, names[10])
}

func TestCommitKeyPrefix(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	ptr := NewBlobPointer(store, "pointers/main/")
	a, _ := sample(t)

	_, err := Commit(ctx, store, ptr, a, WithKeyPrefix("main/"), WithCompression(LZ4))
	require.NoError(t, err)

	_, blob, err := ptr.Latest(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^main/00000000000000000001-[0-9a-f-]{36}\.snap$`, blob)
}

// racingPointer lets another writer commit between Latest and Commit.
type racingPointer struct {
	*BlobPointer
	once sync.Once
}

func (p *racingPointer) Commit(ctx context.Context, version uint64, blob string) error {
	p.once.Do(func() {
		_ = p.BlobPointer.Commit(ctx, version, "elsewhere/winner.snap")
	})

	return p.BlobPointer.Commit(ctx, version, blob)
}

func TestCommitConflict(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ptr := &racingPointer{BlobPointer: NewBlobPointer(store, "HEAD")}
	a, _ := sample(t)

	_, err := Commit(ctx, store, ptr, a)
	require.ErrorIs(t, err, blobstore.ErrConflict)

	// The losing blob is cleaned up; the winner stays current.
	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Empty(t, names)

	version, blob, err := ptr.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "elsewhere/winner.snap", blob)
}

// undeletableStore fails every Delete.
type undeletableStore struct {
	*blobstore.MemoryStore
}

func (undeletableStore) Delete(context.Context, string) error {
	return errors.New("delete refused")
}

func TestCommitConflictLogsLeakedBlob(t *testing.T) {
	ctx := context.Background()
	store := undeletableStore{MemoryStore: blobstore.NewMemoryStore()}
	ptr := &racingPointer{BlobPointer: NewBlobPointer(store, "HEAD")}
	a, _ := sample(t)

	var logs bytes.Buffer

	logger := arenatree.NewLogger(slog.NewJSONHandler(&logs, nil))

	_, err := Commit(ctx, store, ptr, a, WithLogger(logger))
	require.ErrorIs(t, err, blobstore.ErrConflict)

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Len(t, names, 1)

	out := logs.String()
	assert.Contains(t, out, `"msg":"failed to delete uncommitted snapshot"`)
	assert.Contains(t, out, `"key":"`+names[0]+`"`)
	assert.Contains(t, out, `"error":"delete refused"`)
}

func TestCommitAfterOrphanedBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ptr := NewBlobPointer(store, "HEAD")
	a, tokens := sample(t)

	// A writer that stopped between blob and pointer left version 1 behind.
	orphan := VersionName("snapshots/", 1, "crashed")
	require.NoError(t, store.Put(ctx, orphan, []byte("orphan")))

	for want := uint64(1); want <= 3; want++ {
		version, err := Commit(ctx, store, ptr, a)
		require.NoError(t, err)
		assert.Equal(t, want, version)
	}

	b, version, err := Latest[item](ctx, store, ptr)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
	assert.Equal(t, []string{"root", "alpha", "gamma", "beta"}, preorderNames(b, tokens["root"]))

	_, blob, err := ptr.Latest(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, orphan, blob)

	data, err := store.Get(ctx, orphan)
	require.NoError(t, err)
	assert.Equal(t, []byte("orphan"), data)
}

func TestBlobPointerSkipsForeignNames(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ptr := NewBlobPointer(store, "HEAD")

	require.NoError(t, ptr.Commit(ctx, 3, "three"))
	require.NoError(t, store.Put(ctx, "HEAD/notes", []byte("x")))

	version, blob, err := ptr.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)
	assert.Equal(t, "three", blob)

	require.ErrorIs(t, ptr.Commit(ctx, 3, "again"), blobstore.ErrConflict)
}
