// Package hash computes schema fingerprints.
//
// A fingerprint is the xxHash64 of a schema's parsing canonical form. It is
// an in-process cache key (resolver plans are keyed by writer/reader
// fingerprint pairs), never a wire artifact, so a fast non-cryptographic
// hash is sufficient.
package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint64 computes the xxHash64 of the given canonical schema text.
func Fingerprint64(canonical string) uint64 {
	return xxhash.Sum64String(canonical)
}
