// Package snapshot persists whole arenas.
//
// A snapshot is a single self-describing stream:
//
//	Header:
//	  Magic       uint32  "ATRS"
//	  Version     uint32
//	  Compression uint8
//	  CodecLen    uint8
//	  Codec       [CodecLen]byte
//	Body (block-compressed, see internal/compress):
//	  NumGenerations uint32
//	  Generations    [NumGenerations]uint32
//	  NumRecords     uint32
//	  Records...
//	    Index, Parent, PreviousSibling, NextSibling, FirstChild uint32
//	    PayloadLen uint32
//	    Payload    [PayloadLen]byte
//	Trailer:
//	  Checksum uint32  CRC32C of every byte before it
//
// All integers are little-endian. Payloads are encoded with the codec named
// in the header, so a reader needs no configuration to decode snapshots
// written with a built-in codec.
//
// Slot generations are part of the snapshot: tokens issued by the saved
// arena resolve to the same nodes in the restored one.
//
// Save and Load move snapshots through a blobstore.Store. Commit and Latest
// add versioning on top: each commit writes a new immutable blob and then
// advances a Pointer, either a BlobPointer kept in the same store or an
// s3.DDBPointer backed by DynamoDB.
package snapshot
