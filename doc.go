// Package simplessl wraps a handle-based cryptography engine in two small
// abstractions.
//
// Result[T] is a fallible value: a payload plus a numeric error code, where
// zero means success. Every accessor in the sibling packages (certs, keys,
// digest, nid, bignum) returns one. A failed Result carries the engine's
// packed code; Message renders it through the error catalog.
//
// Owned[K] holds exactly one engine handle of kind K and frees it exactly
// once. Ownership moves with Move or leaves with Release; Close is
// idempotent. A runtime cleanup frees handles whose owner was dropped
// without Close, but callers should not rely on it.
//
//	res := certs.ConvertPemFileToX509("server.pem")
//	if res.Failed() {
//		fmt.Println(res.Message())
//		return
//	}
//	cert := res.Take()
//	defer cert.Close()
package simplessl
