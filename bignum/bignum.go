// Package bignum converts between byte strings and engine BIGNUM handles.
package bignum

import (
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// ConvertBinToBN interprets bin as an unsigned big-endian integer.
func ConvertBinToBN(bin []byte) simplessl.Result[*simplessl.BigNum] {
	h := native.BNBin2bn(bin)
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.BigNum]("BNBin2bn")
	}
	return simplessl.OK(simplessl.Own[simplessl.BigNumKind](h))
}

// ConvertBNToBin returns the magnitude as big-endian bytes without leading
// zeros. Zero encodes as an empty slice.
func ConvertBNToBin(bn *simplessl.BigNum) simplessl.Result[[]byte] {
	defer runtime.KeepAlive(bn)
	b, ok := native.BNBn2bin(bn.Get())
	if !ok {
		return simplessl.FromLastError[[]byte]("BNBn2bin")
	}
	return simplessl.OK(b)
}

func GetByteLen(bn *simplessl.BigNum) simplessl.Result[int] {
	defer runtime.KeepAlive(bn)
	n := native.BNNumBytes(bn.Get())
	if n < 0 {
		return simplessl.FromLastError[int]("BNNumBytes")
	}
	return simplessl.OK(n)
}

func ConvertBNToDecimal(bn *simplessl.BigNum) simplessl.Result[string] {
	defer runtime.KeepAlive(bn)
	s := native.BNBn2dec(bn.Get())
	if s == "" {
		return simplessl.FromLastError[string]("BNBn2dec")
	}
	return simplessl.OK(s)
}
