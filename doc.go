// Package arenatree provides ordered multi-child trees stored in a single
// growable slot pool and addressed by small generation-checked handles.
//
// # Quick Start
//
//	a, root := arenatree.WithData("html")
//	head := a.Append(root, "head")
//	body := a.Append(root, "body")
//	_, _ = a.InsertBefore(body, "comment")
//
//	for t := range a.Subtree(root, arenatree.PreOrder) {
//	    fmt.Println(a.Node(t).Data)
//	}
//
// # Tokens
//
// A Token names one node. It carries the slot index and the generation the
// slot had when the node was created. Once the node is removed every lookup
// with the old Token fails, even after the slot is reused by a new node.
// The zero Token means "no node".
//
// # Several Trees, One Arena
//
// An Arena may hold any number of disjoint trees. A node without a parent is
// a root. Detach and ReplaceNode leave such free roots behind, and the
// AppendNode family grafts them back in.
//
// # Errors
//
// Mistakes a caller can anticipate (adding a sibling to a root, attaching a
// node that is not a free root, attaching a node below itself) are returned
// as *NodeError values wrapping ErrRootSibling, ErrNotFreeNode or ErrCycle.
// Operations fail before changing any state.
//
// Using a Token whose node was removed, or finding broken links while
// walking, panics with an *InvariantError.
//
// # Mutable Traversal
//
// Plain traversals yield tokens. A Cursor yields writable payload pointers
// and holds an exclusive session on the arena until it is closed: opening a
// second cursor or changing the tree structure during the session panics.
// The *Mut iterators open and close a cursor around a range loop.
//
//	for _, v := range a.SubtreeMut(root, arenatree.PostOrder) {
//	    *v = strings.ToUpper(*v)
//	}
//
// # Concurrency
//
// An Arena is not safe for concurrent use. Guard it with a single mutex when
// it is shared between goroutines.
//
// # Persistence
//
// Image and Restore convert an arena to and from plain slot records. The
// snapshot package builds compressed, checksummed snapshots on top of them
// and stores them in any blobstore.Store.
package arenatree
