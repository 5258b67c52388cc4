// Package hash provides CRC32-Castagnoli checksums for snapshot integrity.
//
// One-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// Streaming checksums over a snapshot body:
//
//	cw := hash.NewWriter(w)
//	_, _ = body.WriteTo(cw)
//	trailer := cw.Sum32()
//
// Checksums come from github.com/klauspost/crc32, which uses hardware
// instructions (SSE4.2, ARM CRC) when they are available.
package hash
