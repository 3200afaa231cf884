// Package s3 stores checkpoints in Amazon S3 or an S3-compatible service.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/mnist/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	w := checkpoint.NewWriter(store)
//
// Reads are ranged GETs. Streaming writes go through the multipart upload
// manager; Put uploads in one request with a CRC32C checksum.
package s3
