// Package hash provides the CRC32-Castagnoli checksum used for checkpoint
// payloads and S3 upload integrity.
//
//	sum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum = h.Sum32()
//
// The standard library selects the hardware CRC instructions (SSE4.2, ARMv8
// CRC) when they are available.
package hash
