package native

import (
	"encoding/asn1"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Extension is a decoded X.509v3 extension. Text is empty when the engine
// has no renderer for the extension or its value could not be decoded.
type Extension struct {
	NID      int
	OID      string
	Critical bool
	Value    []byte
	Text     string
}

type rawExtension struct {
	oid      string
	critical bool
	value    []byte
}

func makeExtension(e rawExtension) Extension {
	oid, _ := parseOID(e.oid)
	ext := Extension{
		NID:      oidToNID(oid),
		OID:      e.oid,
		Critical: e.critical,
		Value:    append([]byte(nil), e.value...),
	}
	if text, ok := renderExtension(ext.NID, e.value); ok {
		ext.Text = text
	}
	return ext
}

// ExtensionText renders a known extension value the way `openssl x509 -text`
// does. It returns false for unknown or malformed extensions.
func ExtensionText(nid int, value []byte) (string, bool) {
	return renderExtension(nid, value)
}

func renderExtension(nid int, value []byte) (string, bool) {
	in := cryptobyte.String(value)
	switch nid {
	case NIDBasicConstraints:
		return renderBasicConstraints(in)
	case NIDKeyUsage:
		return renderKeyUsage(in)
	case NIDExtKeyUsage:
		return renderOIDList(in)
	case NIDSubjectKeyIdentifier:
		var id cryptobyte.String
		if !in.ReadASN1(&id, cbasn1.OCTET_STRING) {
			return "", false
		}
		return colonHex(id), true
	case NIDAuthorityKeyIdentifier:
		return renderAKI(in)
	case NIDSubjectAltName, NIDIssuerAltName, NIDCertificateIssuer:
		var seq cryptobyte.String
		if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
			return "", false
		}
		return renderGeneralNames(seq)
	case NIDCRLNumber, NIDDeltaCRL:
		n := new(big.Int)
		if !in.ReadASN1Integer(n) {
			return "", false
		}
		return n.String(), true
	case NIDCRLReason:
		var reason int
		if !in.ReadASN1Enum(&reason) {
			return "", false
		}
		return reasonText(reason), true
	case NIDInvalidityDate:
		var t time.Time
		if !in.ReadASN1GeneralizedTime(&t) {
			return "", false
		}
		return t.UTC().Format("Jan _2 15:04:05 2006 GMT"), true
	case NIDCertificatePolicies:
		return renderPolicies(in)
	case NIDCRLDistributionPoints:
		return renderDistributionPoints(in)
	case NIDAuthorityInfoAccess:
		return renderAIA(in)
	}
	return "", false
}

func renderBasicConstraints(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	isCA := false
	if seq.PeekASN1Tag(cbasn1.BOOLEAN) && !seq.ReadASN1Boolean(&isCA) {
		return "", false
	}
	out := "CA:FALSE"
	if isCA {
		out = "CA:TRUE"
	}
	if seq.PeekASN1Tag(cbasn1.INTEGER) {
		var pathLen int64
		if !seq.ReadASN1Integer(&pathLen) {
			return "", false
		}
		out += fmt.Sprintf(", pathlen:%d", pathLen)
	}
	return out, true
}

var keyUsageNames = []string{
	"Digital Signature",
	"Non Repudiation",
	"Key Encipherment",
	"Data Encipherment",
	"Key Agreement",
	"Certificate Sign",
	"CRL Sign",
	"Encipher Only",
	"Decipher Only",
}

func renderKeyUsage(in cryptobyte.String) (string, bool) {
	var bits asn1.BitString
	if !in.ReadASN1BitString(&bits) {
		return "", false
	}
	var names []string
	for i, name := range keyUsageNames {
		if bits.At(i) == 1 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", "), true
}

func renderOIDList(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	var names []string
	for !seq.Empty() {
		var oid asn1.ObjectIdentifier
		if !seq.ReadASN1ObjectIdentifier(&oid) {
			return "", false
		}
		names = append(names, oidName(oid))
	}
	return strings.Join(names, ", "), true
}

func oidName(oid asn1.ObjectIdentifier) string {
	if o, ok := byOID[oid.String()]; ok {
		return o.ln
	}
	return oid.String()
}

func renderAKI(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	var parts []string
	var keyID cryptobyte.String
	var present bool
	if !seq.ReadOptionalASN1(&keyID, &present, cbasn1.Tag(0).ContextSpecific()) {
		return "", false
	}
	if present {
		parts = append(parts, "keyid:"+colonHex(keyID))
	}
	var names cryptobyte.String
	if !seq.ReadOptionalASN1(&names, &present, cbasn1.Tag(1).Constructed().ContextSpecific()) {
		return "", false
	}
	if present {
		text, ok := renderGeneralNames(names)
		if !ok {
			return "", false
		}
		parts = append(parts, text)
	}
	var serial cryptobyte.String
	if !seq.ReadOptionalASN1(&serial, &present, cbasn1.Tag(2).ContextSpecific()) {
		return "", false
	}
	if present {
		parts = append(parts, "serial:"+colonHex(serial))
	}
	return strings.Join(parts, "\n"), true
}

func renderGeneralNames(seq cryptobyte.String) (string, bool) {
	var names []string
	for !seq.Empty() {
		var name cryptobyte.String
		var tag cbasn1.Tag
		if !seq.ReadAnyASN1(&name, &tag) {
			return "", false
		}
		names = append(names, generalName(tag, name))
	}
	return strings.Join(names, ", "), true
}

func generalName(tag cbasn1.Tag, body cryptobyte.String) string {
	switch tag {
	case cbasn1.Tag(1).ContextSpecific():
		return "email:" + string(body)
	case cbasn1.Tag(2).ContextSpecific():
		return "DNS:" + string(body)
	case cbasn1.Tag(6).ContextSpecific():
		return "URI:" + string(body)
	case cbasn1.Tag(7).ContextSpecific():
		if len(body) == net.IPv4len || len(body) == net.IPv6len {
			return "IP Address:" + net.IP(body).String()
		}
		return "IP Address:<invalid>"
	case cbasn1.Tag(4).Constructed().ContextSpecific():
		var name cryptobyte.String
		if body.ReadASN1Element(&name, cbasn1.SEQUENCE) {
			if n, ok := parseName(name); ok {
				return "DirName:" + n.Text
			}
		}
		return "DirName:<invalid>"
	}
	return "othername:<unsupported>"
}

func renderPolicies(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	var lines []string
	for !seq.Empty() {
		var info cryptobyte.String
		var oid asn1.ObjectIdentifier
		if !seq.ReadASN1(&info, cbasn1.SEQUENCE) || !info.ReadASN1ObjectIdentifier(&oid) {
			return "", false
		}
		lines = append(lines, "Policy: "+oid.String())
	}
	return strings.Join(lines, "\n"), true
}

func renderDistributionPoints(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	var lines []string
	for !seq.Empty() {
		var dp, dpName cryptobyte.String
		var present bool
		if !seq.ReadASN1(&dp, cbasn1.SEQUENCE) {
			return "", false
		}
		if !dp.ReadOptionalASN1(&dpName, &present, cbasn1.Tag(0).Constructed().ContextSpecific()) {
			return "", false
		}
		if !present {
			continue
		}
		var full cryptobyte.String
		if !dpName.ReadOptionalASN1(&full, &present, cbasn1.Tag(0).Constructed().ContextSpecific()) {
			return "", false
		}
		if !present {
			continue
		}
		text, ok := renderGeneralNames(full)
		if !ok {
			return "", false
		}
		lines = append(lines, "Full Name: "+text)
	}
	return strings.Join(lines, "\n"), true
}

func renderAIA(in cryptobyte.String) (string, bool) {
	var seq cryptobyte.String
	if !in.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return "", false
	}
	var lines []string
	for !seq.Empty() {
		var desc, loc cryptobyte.String
		var method asn1.ObjectIdentifier
		var tag cbasn1.Tag
		if !seq.ReadASN1(&desc, cbasn1.SEQUENCE) || !desc.ReadASN1ObjectIdentifier(&method) {
			return "", false
		}
		if !desc.ReadAnyASN1(&loc, &tag) {
			return "", false
		}
		lines = append(lines, oidName(method)+" - "+generalName(tag, loc))
	}
	return strings.Join(lines, "\n"), true
}

var crlReasons = map[int]string{
	0:  "Unspecified",
	1:  "Key Compromise",
	2:  "CA Compromise",
	3:  "Affiliation Changed",
	4:  "Superseded",
	5:  "Cessation Of Operation",
	6:  "Certificate Hold",
	8:  "Remove From CRL",
	9:  "Privilege Withdrawn",
	10: "AA Compromise",
}

func reasonText(code int) string {
	if s, ok := crlReasons[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

func colonHex(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}
