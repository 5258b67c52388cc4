// Package arena provides the generation-checked slot allocator that backs
// arenatree.
//
// # Layout
//
// An Allocator keeps every value in one contiguous slice of slots. Slot 0 is
// a sentinel that is never handed out, so the zero Ref always means "absent".
// Each slot is either occupied (value + generation) or free (generation + the
// index of the next free slot). The free slots form a singly linked list with
// a cached head and tail:
//   - Insert pops the head
//   - Remove pushes onto the head (LIFO reuse)
//   - growth splices a fresh run of slots onto the tail in O(1)
//
// # Generations
//
// Removing a value bumps its slot's generation. A Ref remembers the
// generation it was issued with, so a Ref that outlived its value is stale and
// every lookup rejects it instead of aliasing whatever reused the slot.
//
// # Concurrency Model
//
// Allocator is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package arena
