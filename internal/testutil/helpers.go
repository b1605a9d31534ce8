package testutil

import (
	"crypto/md5"
	"fmt"
)

// MD5Hex returns the hex MD5 digest of b.
func MD5Hex(b []byte) string {
	return fmt.Sprintf("%x", md5.Sum(b))
}

// PartDigests splits data into chunkSize slices and returns the raw MD5
// digest of each, in order. The final digest covers the short tail, if any.
func PartDigests(data []byte, chunkSize int64) [][]byte {
	var digests [][]byte
	for off := int64(0); off < int64(len(data)); off += chunkSize {
		end := off + chunkSize
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		sum := md5.Sum(data[off:end])
		digest := make([]byte, len(sum))
		copy(digest, sum[:])
		digests = append(digests, digest)
	}
	return digests
}

// CompositeETagOf computes the multipart ETag over the given raw part
// digests, mirroring the backend's convention.
func CompositeETagOf(digests [][]byte) string {
	h := md5.New()
	for _, d := range digests {
		h.Write(d)
	}
	return fmt.Sprintf("%x-%d", h.Sum(nil), len(digests))
}
