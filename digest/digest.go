// Package digest computes SHA-1 and SHA-2 digests of byte slices and files.
package digest

import (
	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// Algorithm is a digest algorithm, identified by its NID.
type Algorithm int

const (
	SHA1   Algorithm = native.NIDSHA1
	SHA256 Algorithm = native.NIDSHA256
	SHA384 Algorithm = native.NIDSHA384
	SHA512 Algorithm = native.NIDSHA512
)

// Sum hashes data with alg.
func Sum(alg Algorithm, data []byte) simplessl.Result[[]byte] {
	out := native.EVPDigest(int(alg), data)
	if out == nil {
		return simplessl.FromLastError[[]byte]("EVPDigest")
	}
	return simplessl.OK(out)
}

// SumFile hashes the file at path with alg, reading it in chunks.
func SumFile(alg Algorithm, path string) simplessl.Result[[]byte] {
	out := native.EVPDigestFile(int(alg), path)
	if out == nil {
		return simplessl.FromLastError[[]byte]("EVPDigestFile")
	}
	return simplessl.OK(out)
}

// Size returns the output length of alg in bytes.
func Size(alg Algorithm) simplessl.Result[int] {
	n := native.EVPDigestSize(int(alg))
	if n == 0 {
		return simplessl.FromLastError[int]("EVPDigestSize")
	}
	return simplessl.OK(n)
}

func Sha1(data []byte) simplessl.Result[[]byte]   { return Sum(SHA1, data) }
func Sha256(data []byte) simplessl.Result[[]byte] { return Sum(SHA256, data) }
func Sha384(data []byte) simplessl.Result[[]byte] { return Sum(SHA384, data) }
func Sha512(data []byte) simplessl.Result[[]byte] { return Sum(SHA512, data) }

func FileSha1(path string) simplessl.Result[[]byte]   { return SumFile(SHA1, path) }
func FileSha256(path string) simplessl.Result[[]byte] { return SumFile(SHA256, path) }
func FileSha384(path string) simplessl.Result[[]byte] { return SumFile(SHA384, path) }
func FileSha512(path string) simplessl.Result[[]byte] { return SumFile(SHA512, path) }
