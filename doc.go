// Package streamtos3 streams an unbounded byte sequence into an S3 object
// using multipart upload, without buffering the whole input in memory.
// It wraps AWS SDK v2 and is built for piping the output of another process
// (an archival tool, a database dump) directly into durable object storage.
//
// Each upload splits the stream into fixed-size parts, uploads every part
// with bounded retry and a Content-MD5 round-trip check, and completes the
// multipart session with the ordered part list. After completion the
// composite checksum recomputed from the collected part digests is compared
// against the backend-reported ETag. On any terminal part failure the
// multipart session is aborted, so the remote object is either
// complete-and-verified or cleaned up.
//
// Key features:
//   - Bounded memory: one reusable chunk buffer per upload
//   - Per-part retry with a fixed delay and per-part checksum verification
//   - Composite ETag verification after completion
//   - Progressive enhancement through functional options
//   - Distinguishable error kinds for every failure mode
//
// Example usage:
//
//	client, err := streamtos3.New(
//	    streamtos3.WithRegion("eu-central-1"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Stream(ctx, "my-bucket", "backup.tar.bz2", os.Stdin)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := client.Verify(ctx, "my-bucket", "backup.tar.bz2", result.Parts); err != nil {
//	    return err
//	}
package streamtos3
