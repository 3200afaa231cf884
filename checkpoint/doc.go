// Package checkpoint persists matrices to a blobstore.BlobStore.
//
// Each matrix is stored as one blob: a fixed 32-byte little-endian header
// followed by its float32 data, optionally compressed with zstd or LZ4.
//
//	+------+---------+-------------+-----+------+------+--------+------------+--------+
//	| NUCM | version | compression | pad | rows | cols | rawLen | payloadLen | crc32c |
//	|  4B  |   2B    |     1B      | 1B  |  4B  |  4B  |   8B   |     4B     |   4B   |
//	+------+---------+-------------+-----+------+------+--------+------------+--------+
//
// The checksum covers the stored payload. A blob is fully validated before
// any arena memory is allocated for it, so a corrupt checkpoint never
// consumes the reservation.
//
//	w := checkpoint.NewWriter(store, checkpoint.WithCompression(checkpoint.CompressionZSTD))
//	err := w.SaveAll(ctx, map[string]*matrix.Matrix{"w1": w1, "w2": w2})
//
//	r := checkpoint.NewReader(store)
//	w1, err := r.Load(ctx, "w1", a)
package checkpoint
