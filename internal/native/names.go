package native

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"
)

// NameEntry is one attribute of a distinguished name.
type NameEntry struct {
	NID   int
	OID   string
	Value string
}

// Name is a decoded distinguished name. Text uses the one-line form
// "C=US, O=Example, CN=host" with attributes in encoding order.
type Name struct {
	Entries []NameEntry
	Text    string
	DER     []byte
}

func parseName(der []byte) (Name, bool) {
	var rdns pkix.RDNSequence
	rest, err := asn1.Unmarshal(der, &rdns)
	if err != nil || len(rest) != 0 {
		return Name{}, false
	}
	n := Name{DER: append([]byte(nil), der...)}
	var parts []string
	for _, rdn := range rdns {
		for _, atv := range rdn {
			e := NameEntry{
				NID:   oidToNID(atv.Type),
				OID:   atv.Type.String(),
				Value: fmt.Sprint(atv.Value),
			}
			n.Entries = append(n.Entries, e)
			label := e.OID
			if o, ok := byNID[e.NID]; ok && e.NID != NIDUndef {
				label = o.sn
			}
			parts = append(parts, label+"="+e.Value)
		}
	}
	n.Text = strings.Join(parts, ", ")
	return n, true
}
