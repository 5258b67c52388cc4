package snapshot_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/arenatree"
	"github.com/hupe1980/arenatree/blobstore"
	"github.com/hupe1980/arenatree/snapshot"
)

// Example_commit versions a tree in a blob store and reads the newest copy back.
func Example_commit() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	head := snapshot.NewBlobPointer(store, "HEAD")

	a, root := arenatree.WithData("root")
	child := a.Append(root, "child")

	if _, err := snapshot.Commit(ctx, store, head, a); err != nil {
		fmt.Println(err)
		return
	}

	a.Node(child).Data = "renamed"

	version, err := snapshot.Commit(ctx, store, head, a)
	if err != nil {
		fmt.Println(err)
		return
	}

	b, _, err := snapshot.Latest[string](ctx, store, head)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(version, b.Node(child).Data)
	// Output:
	// 2 renamed
}
