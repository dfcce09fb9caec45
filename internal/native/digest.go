package native

import (
	"crypto/sha1" //nolint:gosec // SHA-1 fingerprints are still a display format
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

func newDigest(nid int) (hash.Hash, bool) {
	switch nid {
	case NIDSHA1:
		return sha1.New(), true //nolint:gosec
	case NIDSHA256:
		return sha256.New(), true
	case NIDSHA384:
		return sha512.New384(), true
	case NIDSHA512:
		return sha512.New(), true
	}
	raise(LibEVP, ReasonUnsupportedAlgorithm)
	return nil, false
}

// EVPDigest hashes data with the digest identified by nid.
func EVPDigest(nid int, data []byte) []byte {
	h, ok := newDigest(nid)
	if !ok {
		return nil
	}
	h.Write(data)
	return h.Sum(nil)
}

// EVPDigestFile hashes the file at path without loading it into memory.
func EVPDigestFile(nid int, path string) []byte {
	h, ok := newDigest(nid)
	if !ok {
		return nil
	}
	if !BIOStreamFile(path, h) {
		return nil
	}
	return h.Sum(nil)
}

// EVPDigestSize returns the output length of the digest, or 0.
func EVPDigestSize(nid int) int {
	h, ok := newDigest(nid)
	if !ok {
		return 0
	}
	return h.Size()
}
