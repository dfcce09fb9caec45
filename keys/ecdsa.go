package keys

import (
	"runtime"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// ConvertToEcdsa returns an EC view of pkey.
func ConvertToEcdsa(pkey *simplessl.PKey) simplessl.Result[*simplessl.ECKey] {
	defer runtime.KeepAlive(pkey)
	h := native.EVPPKeyGet1ECKey(pkey.Get())
	if h == native.Null {
		return simplessl.FromLastError[*simplessl.ECKey]("EVPPKeyGet1ECKey")
	}
	return simplessl.OK(simplessl.Own[simplessl.ECKeyKind](h))
}

// GetCurve returns the key's named curve.
func GetCurve(key *simplessl.ECKey) simplessl.Result[Curve] {
	defer runtime.KeepAlive(key)
	nid := native.ECKeyCurveNID(key.Get())
	if nid == native.NIDUndef {
		return simplessl.FromLastError[Curve]("ECKeyCurveNID")
	}
	return simplessl.OK(Curve(nid))
}

// ConvertCurveToString returns the curve's short name, e.g. "prime256v1".
func ConvertCurveToString(curve Curve) simplessl.Result[string] {
	sn := native.OBJNid2sn(int(curve))
	if sn == "" {
		return simplessl.FromLastError[string]("OBJNid2sn")
	}
	return simplessl.OK(sn)
}

// GetEcKeySize returns the curve's field size in bits.
func GetEcKeySize(key *simplessl.ECKey) simplessl.Result[int] {
	defer runtime.KeepAlive(key)
	n := native.ECKeyDegree(key.Get())
	if n == 0 {
		return simplessl.FromLastError[int]("ECKeyDegree")
	}
	return simplessl.OK(n)
}
