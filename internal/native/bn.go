package native

import "math/big"

// maxBNBytes bounds BNBin2bn input.
const maxBNBytes = 1 << 16

func newBN(n *big.Int) Handle {
	return put(new(big.Int).Set(n))
}

// BNBin2bn interprets b as an unsigned big-endian integer.
func BNBin2bn(b []byte) Handle {
	if len(b) > maxBNBytes {
		raise(LibBN, ReasonBignumTooLong)
		return Null
	}
	return put(new(big.Int).SetBytes(b))
}

// BNBn2bin returns the magnitude of n as big-endian bytes. Zero encodes as
// an empty slice.
func BNBn2bin(h Handle) ([]byte, bool) {
	n, ok := lookup[*big.Int](h)
	if !ok {
		return nil, false
	}
	return n.Bytes(), true
}

// BNNumBytes returns the byte length of |n|, or -1.
func BNNumBytes(h Handle) int {
	n, ok := lookup[*big.Int](h)
	if !ok {
		return -1
	}
	return (n.BitLen() + 7) / 8
}

// BNBn2dec renders n in decimal.
func BNBn2dec(h Handle) string {
	n, ok := lookup[*big.Int](h)
	if !ok {
		return ""
	}
	return n.String()
}

// BNIsNegative reports the sign of n.
func BNIsNegative(h Handle) bool {
	n, ok := lookup[*big.Int](h)
	return ok && n.Sign() < 0
}

// BNFree releases a BIGNUM handle.
func BNFree(h Handle) {
	drop[*big.Int](h)
}
