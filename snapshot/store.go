package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/blobstore"
)

// Pointer tracks the current version of a snapshot series.
//
// Commit must fail with blobstore.ErrConflict when version was already
// committed, so that concurrent writers cannot both advance the series.
type Pointer interface {
	// Latest returns the highest committed version and its blob name.
	// Version 0 means nothing was committed.
	Latest(ctx context.Context) (uint64, string, error)
	// Commit records blob as version.
	Commit(ctx context.Context, version uint64, blob string) error
}

// Save writes a snapshot of a to store under name, replacing any previous blob.
func Save[T any](ctx context.Context, store blobstore.Store, name string, a *arenatree.Arena[T], opts ...Option) error {
	o := applyOptions(opts)
	return save(ctx, store, name, a, &o, opts, store.Put)
}

func save[T any](
	ctx context.Context,
	store blobstore.Store,
	name string,
	a *arenatree.Arena[T],
	o *options,
	opts []Option,
	put func(context.Context, string, []byte) error,
) error {
	start := time.Now()

	var buf bytes.Buffer

	n, err := Write(&buf, a, opts...)
	if err == nil {
		err = put(ctx, name, buf.Bytes())
	}

	o.metrics.RecordSnapshot(n, time.Since(start), err)
	o.logger.LogSnapshot(ctx, name, a.Len(), n, err)

	return err
}

// Load reads the snapshot stored under name.
func Load[T any](ctx context.Context, store blobstore.Store, name string, opts ...Option) (*arenatree.Arena[T], error) {
	o := applyOptions(opts)
	start := time.Now()

	a, err := load[T](ctx, store, name, opts)

	o.metrics.RecordRestore(time.Since(start), err)

	nodes := 0
	if a != nil {
		nodes = a.Len()
	}

	o.logger.LogRestore(ctx, name, nodes, err)

	return a, err
}

func load[T any](ctx context.Context, store blobstore.Store, name string, opts []Option) (*arenatree.Arena[T], error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return Read[T](bytes.NewReader(data), opts...)
}

// VersionName returns the blob name Commit uses for an attempt at version.
// id tells attempts at the same version apart.
func VersionName(prefix string, version uint64, id string) string {
	return fmt.Sprintf("%s%020d-%s.snap", prefix, version, id)
}

// Commit saves a as the next version of the series tracked by ptr and
// returns that version. Every attempt writes its own immutable blob, so the
// pointer alone decides which writer wins. If another writer commits the
// same version first, Commit removes its blob and returns
// blobstore.ErrConflict.
func Commit[T any](ctx context.Context, store blobstore.Store, ptr Pointer, a *arenatree.Arena[T], opts ...Option) (uint64, error) {
	o := applyOptions(opts)

	latest, _, err := ptr.Latest(ctx)
	if err != nil {
		return 0, err
	}

	version := latest + 1
	name := VersionName(o.prefix, version, uuid.NewString())

	putIfAbsent := func(ctx context.Context, name string, data []byte) error {
		return blobstore.PutIfAbsent(ctx, store, name, data)
	}

	if err := save(ctx, store, name, a, &o, opts, putIfAbsent); err != nil {
		return 0, err
	}

	if err := ptr.Commit(ctx, version, name); err != nil {
		// Other errors leave the blob: the pointer may have advanced anyway.
		if !errors.Is(err, blobstore.ErrConflict) {
			return 0, err
		}

		if derr := store.Delete(ctx, name); derr != nil {
			o.logger.WithKey(name).ErrorContext(ctx, "failed to delete uncommitted snapshot",
				"version", version,
				"error", derr,
			)
		}

		return 0, err
	}

	return version, nil
}

// Latest loads the newest committed version of the series tracked by ptr.
// It returns ErrNoSnapshot before the first commit.
func Latest[T any](ctx context.Context, store blobstore.Store, ptr Pointer, opts ...Option) (*arenatree.Arena[T], uint64, error) {
	version, name, err := ptr.Latest(ctx)
	if err != nil {
		return nil, 0, err
	}

	if version == 0 {
		return nil, 0, ErrNoSnapshot
	}

	a, err := Load[T](ctx, store, name, opts...)
	if err != nil {
		return nil, 0, err
	}

	return a, version, nil
}

// BlobPointer keeps a Pointer as small blobs in a store, one per version:
// "<name>/<version>" holds the snapshot blob name. Commits are exclusive when
// the store implements blobstore.ConditionalStore.
type BlobPointer struct {
	store blobstore.Store
	name  string
}

var _ Pointer = (*BlobPointer)(nil)

// NewBlobPointer creates a pointer named name in store.
func NewBlobPointer(store blobstore.Store, name string) *BlobPointer {
	return &BlobPointer{store: store, name: strings.TrimSuffix(name, "/")}
}

func (p *BlobPointer) key(version uint64) string {
	return fmt.Sprintf("%s/%020d", p.name, version)
}

// Latest implements Pointer.
func (p *BlobPointer) Latest(ctx context.Context) (uint64, string, error) {
	prefix := p.name + "/"

	names, err := p.store.List(ctx, prefix)
	if err != nil {
		return 0, "", err
	}

	// Zero-padded versions sort numerically.
	for _, name := range slices.Backward(names) {
		version, err := strconv.ParseUint(strings.TrimPrefix(name, prefix), 10, 64)
		if err != nil || version == 0 {
			continue
		}

		blob, err := p.store.Get(ctx, name)
		if err != nil {
			return 0, "", err
		}

		return version, string(blob), nil
	}

	return 0, "", nil
}

// Commit implements Pointer.
func (p *BlobPointer) Commit(ctx context.Context, version uint64, blob string) error {
	return blobstore.PutIfAbsent(ctx, p.store, p.key(version), []byte(blob))
}
