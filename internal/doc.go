// Package internal contains private implementation details for the
// streaming upload module. These packages are not intended for external use
// and may change without notice.
//
// The internal packages are organized as follows:
//   - chunk: fixed-size chunking of the input stream
//   - upload: the multipart upload state machine and per-part retry
//   - verify: composite checksum math and the post-upload integrity check
//   - validation: input validation logic
//   - pool: memory management optimizations
//   - s3api: the S3 operation subset consumed by this module
//   - testutil: mocks and the stateful fake backend used in tests
package internal
