// Package nid maps between numeric object identifiers, names and dotted OIDs.
package nid

import (
	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal/native"
)

// Undef is returned where no object matches.
const Undef = native.NIDUndef

func GetLongName(nid int) simplessl.Result[string] {
	ln := native.OBJNid2ln(nid)
	if ln == "" {
		return simplessl.FromLastError[string]("OBJNid2ln")
	}
	return simplessl.OK(ln)
}

func GetShortName(nid int) simplessl.Result[string] {
	sn := native.OBJNid2sn(nid)
	if sn == "" {
		return simplessl.FromLastError[string]("OBJNid2sn")
	}
	return simplessl.OK(sn)
}

// ConvertOidToNid resolves a dotted OID, short name or long name.
func ConvertOidToNid(oid string) simplessl.Result[int] {
	n := native.OBJTxt2nid(oid)
	if n == native.NIDUndef {
		return simplessl.FromLastError[int]("OBJTxt2nid")
	}
	return simplessl.OK(n)
}

func ConvertNidToOid(nid int) simplessl.Result[string] {
	oid := native.OBJNid2oid(nid)
	if oid == "" {
		return simplessl.FromLastError[string]("OBJNid2oid")
	}
	return simplessl.OK(oid)
}
