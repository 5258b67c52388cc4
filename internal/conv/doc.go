// Package conv provides checked integer conversions.
//
// Slot indices are uint32 on disk and in tokens but int everywhere the Go
// runtime hands out lengths. These helpers sit on that boundary when the
// slot pool grows and when snapshots encode counts (int length -> uint32).
//
// Conversions that are provably safe by construction (loop indices bounded by
// an already checked length) use direct casts instead.
package conv
