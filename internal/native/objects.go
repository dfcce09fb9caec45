package native

import (
	"encoding/asn1"
	"strconv"
	"strings"
)

// Object identifiers known to the engine. Numbering follows OpenSSL's
// obj_mac.h so that values printed by tools line up.
const (
	NIDUndef = 0

	NIDRSAEncryption = 6
	NIDDSA           = 116
	NIDECPublicKey   = 408
	NIDED25519       = 1087

	NIDSHA1WithRSA     = 65
	NIDSHA256WithRSA   = 668
	NIDSHA384WithRSA   = 669
	NIDSHA512WithRSA   = 670
	NIDRSASSAPSS       = 912
	NIDECDSAWithSHA1   = 416
	NIDECDSAWithSHA256 = 794
	NIDECDSAWithSHA384 = 795
	NIDECDSAWithSHA512 = 796

	NIDSHA1   = 64
	NIDSHA256 = 672
	NIDSHA384 = 673
	NIDSHA512 = 674

	NIDSecp224r1  = 713
	NIDPrime256v1 = 415
	NIDSecp384r1  = 715
	NIDSecp521r1  = 716

	NIDCommonName             = 13
	NIDCountryName            = 14
	NIDLocalityName           = 15
	NIDStateOrProvinceName    = 16
	NIDOrganizationName       = 17
	NIDOrganizationalUnitName = 18
	NIDSerialNumber           = 105
	NIDEmailAddress           = 48

	NIDSubjectKeyIdentifier   = 82
	NIDKeyUsage               = 83
	NIDSubjectAltName         = 85
	NIDIssuerAltName          = 86
	NIDBasicConstraints       = 87
	NIDCRLNumber              = 88
	NIDCertificatePolicies    = 89
	NIDAuthorityKeyIdentifier = 90
	NIDCRLDistributionPoints  = 103
	NIDExtKeyUsage            = 126
	NIDCRLReason              = 141
	NIDInvalidityDate         = 142
	NIDDeltaCRL               = 140
	NIDAuthorityInfoAccess    = 177
	NIDNameConstraints        = 666
	NIDIssuingDistPoint       = 770
	NIDCertificateIssuer      = 771
	NIDCTPrecertSCTs          = 951

	NIDServerAuth      = 129
	NIDClientAuth      = 130
	NIDCodeSigning     = 131
	NIDEmailProtection = 132
	NIDTimeStamping    = 133
	NIDOCSPSigning     = 180
	NIDOCSP            = 178
	NIDCAIssuers       = 179
)

type object struct {
	nid int
	sn  string
	ln  string
	oid string
}

var objects = []object{
	{NIDRSAEncryption, "rsaEncryption", "rsaEncryption", "1.2.840.113549.1.1.1"},
	{NIDDSA, "DSA", "dsaEncryption", "1.2.840.10040.4.1"},
	{NIDECPublicKey, "id-ecPublicKey", "id-ecPublicKey", "1.2.840.10045.2.1"},
	{NIDED25519, "ED25519", "ED25519", "1.3.101.112"},

	{NIDSHA1WithRSA, "RSA-SHA1", "sha1WithRSAEncryption", "1.2.840.113549.1.1.5"},
	{NIDSHA256WithRSA, "RSA-SHA256", "sha256WithRSAEncryption", "1.2.840.113549.1.1.11"},
	{NIDSHA384WithRSA, "RSA-SHA384", "sha384WithRSAEncryption", "1.2.840.113549.1.1.12"},
	{NIDSHA512WithRSA, "RSA-SHA512", "sha512WithRSAEncryption", "1.2.840.113549.1.1.13"},
	{NIDRSASSAPSS, "RSASSA-PSS", "rsassaPss", "1.2.840.113549.1.1.10"},
	{NIDECDSAWithSHA1, "ecdsa-with-SHA1", "ecdsa-with-SHA1", "1.2.840.10045.4.1"},
	{NIDECDSAWithSHA256, "ecdsa-with-SHA256", "ecdsa-with-SHA256", "1.2.840.10045.4.3.2"},
	{NIDECDSAWithSHA384, "ecdsa-with-SHA384", "ecdsa-with-SHA384", "1.2.840.10045.4.3.3"},
	{NIDECDSAWithSHA512, "ecdsa-with-SHA512", "ecdsa-with-SHA512", "1.2.840.10045.4.3.4"},

	{NIDSHA1, "SHA1", "sha1", "1.3.14.3.2.26"},
	{NIDSHA256, "SHA256", "sha256", "2.16.840.1.101.3.4.2.1"},
	{NIDSHA384, "SHA384", "sha384", "2.16.840.1.101.3.4.2.2"},
	{NIDSHA512, "SHA512", "sha512", "2.16.840.1.101.3.4.2.3"},

	{NIDSecp224r1, "secp224r1", "secp224r1", "1.3.132.0.33"},
	{NIDPrime256v1, "prime256v1", "prime256v1", "1.2.840.10045.3.1.7"},
	{NIDSecp384r1, "secp384r1", "secp384r1", "1.3.132.0.34"},
	{NIDSecp521r1, "secp521r1", "secp521r1", "1.3.132.0.35"},

	{NIDCommonName, "CN", "commonName", "2.5.4.3"},
	{NIDCountryName, "C", "countryName", "2.5.4.6"},
	{NIDLocalityName, "L", "localityName", "2.5.4.7"},
	{NIDStateOrProvinceName, "ST", "stateOrProvinceName", "2.5.4.8"},
	{NIDOrganizationName, "O", "organizationName", "2.5.4.10"},
	{NIDOrganizationalUnitName, "OU", "organizationalUnitName", "2.5.4.11"},
	{NIDSerialNumber, "serialNumber", "serialNumber", "2.5.4.5"},
	{NIDEmailAddress, "emailAddress", "emailAddress", "1.2.840.113549.1.9.1"},

	{NIDSubjectKeyIdentifier, "subjectKeyIdentifier", "X509v3 Subject Key Identifier", "2.5.29.14"},
	{NIDKeyUsage, "keyUsage", "X509v3 Key Usage", "2.5.29.15"},
	{NIDSubjectAltName, "subjectAltName", "X509v3 Subject Alternative Name", "2.5.29.17"},
	{NIDIssuerAltName, "issuerAltName", "X509v3 Issuer Alternative Name", "2.5.29.18"},
	{NIDBasicConstraints, "basicConstraints", "X509v3 Basic Constraints", "2.5.29.19"},
	{NIDCRLNumber, "crlNumber", "X509v3 CRL Number", "2.5.29.20"},
	{NIDCRLReason, "CRLReason", "X509v3 CRL Reason Code", "2.5.29.21"},
	{NIDInvalidityDate, "invalidityDate", "Invalidity Date", "2.5.29.24"},
	{NIDDeltaCRL, "deltaCRL", "X509v3 Delta CRL Indicator", "2.5.29.27"},
	{NIDIssuingDistPoint, "issuingDistributionPoint", "X509v3 Issuing Distribution Point", "2.5.29.28"},
	{NIDCertificateIssuer, "certificateIssuer", "X509v3 Certificate Issuer", "2.5.29.29"},
	{NIDNameConstraints, "nameConstraints", "X509v3 Name Constraints", "2.5.29.30"},
	{NIDCRLDistributionPoints, "crlDistributionPoints", "X509v3 CRL Distribution Points", "2.5.29.31"},
	{NIDCertificatePolicies, "certificatePolicies", "X509v3 Certificate Policies", "2.5.29.32"},
	{NIDAuthorityKeyIdentifier, "authorityKeyIdentifier", "X509v3 Authority Key Identifier", "2.5.29.35"},
	{NIDExtKeyUsage, "extendedKeyUsage", "X509v3 Extended Key Usage", "2.5.29.37"},
	{NIDAuthorityInfoAccess, "authorityInfoAccess", "Authority Information Access", "1.3.6.1.5.5.7.1.1"},
	{NIDCTPrecertSCTs, "ct_precert_scts", "CT Precertificate SCTs", "1.3.6.1.4.1.11129.2.4.2"},

	{NIDServerAuth, "serverAuth", "TLS Web Server Authentication", "1.3.6.1.5.5.7.3.1"},
	{NIDClientAuth, "clientAuth", "TLS Web Client Authentication", "1.3.6.1.5.5.7.3.2"},
	{NIDCodeSigning, "codeSigning", "Code Signing", "1.3.6.1.5.5.7.3.3"},
	{NIDEmailProtection, "emailProtection", "E-mail Protection", "1.3.6.1.5.5.7.3.4"},
	{NIDTimeStamping, "timeStamping", "Time Stamping", "1.3.6.1.5.5.7.3.8"},
	{NIDOCSPSigning, "OCSPSigning", "OCSP Signing", "1.3.6.1.5.5.7.3.9"},
	{NIDOCSP, "OCSP", "OCSP", "1.3.6.1.5.5.7.48.1"},
	{NIDCAIssuers, "caIssuers", "CA Issuers", "1.3.6.1.5.5.7.48.2"},
}

var (
	byNID = map[int]*object{}
	byOID = map[string]*object{}
	byTxt = map[string]*object{}
)

func init() {
	for i := range objects {
		o := &objects[i]
		byNID[o.nid] = o
		byOID[o.oid] = o
		byTxt[o.sn] = o
		byTxt[o.ln] = o
	}
}

// OBJNid2ln returns the long name of nid, or "" with the slot set.
func OBJNid2ln(nid int) string {
	o, ok := byNID[nid]
	if !ok {
		raise(LibOBJ, ReasonUnknownNID)
		return ""
	}
	return o.ln
}

// OBJNid2sn returns the short name of nid, or "" with the slot set.
func OBJNid2sn(nid int) string {
	o, ok := byNID[nid]
	if !ok {
		raise(LibOBJ, ReasonUnknownNID)
		return ""
	}
	return o.sn
}

// OBJNid2oid returns the dotted OID of nid, or "" with the slot set.
func OBJNid2oid(nid int) string {
	o, ok := byNID[nid]
	if !ok {
		raise(LibOBJ, ReasonUnknownNID)
		return ""
	}
	return o.oid
}

// OBJTxt2nid resolves a dotted OID, short name or long name. It returns
// NIDUndef with the slot set when nothing matches.
func OBJTxt2nid(s string) int {
	s = strings.TrimSpace(s)
	if o, ok := byOID[s]; ok {
		return o.nid
	}
	if o, ok := byTxt[s]; ok {
		return o.nid
	}
	if !validOID(s) {
		raise(LibOBJ, ReasonUnknownObjectName)
		return NIDUndef
	}
	raise(LibOBJ, ReasonUnknownNID)
	return NIDUndef
}

// oidToNID is the quiet lookup used by accessors that report NIDUndef for
// unrecognized algorithms.
func oidToNID(oid asn1.ObjectIdentifier) int {
	if o, ok := byOID[oid.String()]; ok {
		return o.nid
	}
	return NIDUndef
}

func nidToOID(nid int) (asn1.ObjectIdentifier, bool) {
	o, ok := byNID[nid]
	if !ok {
		return nil, false
	}
	return parseOID(o.oid)
}

func validOID(s string) bool {
	_, ok := parseOID(s)
	return ok
}

func parseOID(s string) (asn1.ObjectIdentifier, bool) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, false
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		oid[i] = n
	}
	return oid, true
}
