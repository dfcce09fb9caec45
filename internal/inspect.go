package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/certs"
	"github.com/sensiblebit/simplessl/digest"
	"github.com/sensiblebit/simplessl/internal/native"
	"github.com/sensiblebit/simplessl/keys"
	"github.com/sensiblebit/simplessl/nid"
)

// Hex wrap widths for the text report.
const (
	pubKeyHexWidth    = 30
	signatureHexWidth = 36
)

// NameFields holds the distinguished name attributes shown in reports.
type NameFields struct {
	Text                string `json:"text"`
	CommonName          string `json:"common_name,omitempty"`
	CountryName         string `json:"country_name,omitempty"`
	LocalityName        string `json:"locality_name,omitempty"`
	OrganizationName    string `json:"organization_name,omitempty"`
	StateOrProvinceName string `json:"state_or_province_name,omitempty"`
}

// KeyInfo describes a certificate's public key.
type KeyInfo struct {
	Algorithm   string `json:"algorithm"`
	Detail      string `json:"detail,omitempty"`
	Fingerprint string `json:"ssh_fingerprint,omitempty"`
	DER         string `json:"der"`
}

// ExtensionInfo is one extension line. Value is the rendered text for known
// extensions and hex otherwise.
type ExtensionInfo struct {
	Name     string `json:"name,omitempty"`
	OID      string `json:"oid"`
	Critical bool   `json:"critical"`
	Known    bool   `json:"known"`
	Value    string `json:"value"`
}

// RevokedInfo is one revoked certificate entry.
type RevokedInfo struct {
	Serial     string          `json:"serial"`
	Date       string          `json:"revocation_date"`
	Extensions []ExtensionInfo `json:"extensions,omitempty"`
}

// Report is the inspection result for one certificate or CRL. Fields are
// filled in order; when an accessor fails, Error and ErrorCode record it and
// the remaining fields stay empty.
type Report struct {
	Kind               string          `json:"kind"`
	Source             string          `json:"source"`
	Version            string          `json:"version,omitempty"`
	Serial             string          `json:"serial,omitempty"`
	Subject            *NameFields     `json:"subject,omitempty"`
	Issuer             *NameFields     `json:"issuer,omitempty"`
	NotBefore          string          `json:"not_before,omitempty"`
	NotAfter           string          `json:"not_after,omitempty"`
	ThisUpdate         string          `json:"this_update,omitempty"`
	NextUpdate         string          `json:"next_update,omitempty"`
	PublicKey          *KeyInfo        `json:"public_key,omitempty"`
	SelfSigned         bool            `json:"self_signed,omitempty"`
	Extensions         []ExtensionInfo `json:"extensions,omitempty"`
	Revoked            []RevokedInfo   `json:"revoked,omitempty"`
	SignatureAlgorithm string          `json:"signature_algorithm,omitempty"`
	Signature          string          `json:"signature,omitempty"`
	SHA256             string          `json:"sha256_fingerprint,omitempty"`
	Error              string          `json:"error,omitempty"`
	ErrorCode          uint64          `json:"error_code,omitempty"`

	extensionsRead bool
	revokedRead    bool
}

// Failed reports whether inspection stopped at a failed accessor.
func (r *Report) Failed() bool { return r.Error != "" }

// check records res on r when it failed and reports whether it did.
func check[T any](r *Report, res simplessl.Result[T]) bool {
	if res.Succeeded() {
		return false
	}
	r.Error = res.Message()
	r.ErrorCode = uint64(res.ErrorCode())
	return true
}

// Report kinds.
const (
	KindCertificate = "certificate"
	KindCRL         = "crl"
)

// InspectCert reports on the first certificate in a PEM file.
func InspectCert(path string) Report {
	r := Report{Kind: KindCertificate, Source: path}
	res := certs.ConvertPemFileToX509(path)
	if check(&r, res) {
		return r
	}
	cert := res.Value()
	defer cert.Close()
	inspectCert(&r, cert)
	return r
}

// InspectCertificate reports on an already loaded certificate.
func InspectCertificate(cert *simplessl.Cert, source string) Report {
	r := Report{Kind: KindCertificate, Source: source}
	inspectCert(&r, cert)
	return r
}

func inspectCert(r *Report, cert *simplessl.Cert) {
	r.Version = versionText(certs.GetVersion(cert))

	serial := certs.GetSerialNumber(cert)
	if check(r, serial) {
		return
	}
	r.Serial = Bin2Hex(serial.Value())

	subject := certs.GetSubject(cert)
	if check(r, subject) {
		return
	}
	r.Subject = nameFields(subject.Value())

	issuer := certs.GetIssuer(cert)
	if check(r, issuer) {
		return
	}
	r.Issuer = nameFields(issuer.Value())

	validity := certs.GetValidity(cert)
	if check(r, validity) {
		return
	}
	r.NotBefore = formatTime(validity.Value().NotBefore)
	r.NotAfter = formatTime(validity.Value().NotAfter)

	pubRes := certs.GetPubKey(cert)
	if check(r, pubRes) {
		return
	}
	pub := pubRes.Value()
	defer pub.Close()
	der := keys.ConvertPubKeyToDer(pub)
	if check(r, der) {
		return
	}
	r.PublicKey = &KeyInfo{
		Algorithm:   longName(certs.GetPubKeyAlgorithm(cert)),
		Detail:      keyDetail(pub),
		Fingerprint: keys.GetPubKeyFingerprint(pub).Value(),
		DER:         Bin2Hex(der.Value()),
	}

	self := certs.IsSelfSigned(cert)
	if check(r, self) {
		return
	}
	r.SelfSigned = self.Value()

	exts := certs.GetExtensions(cert)
	if check(r, exts) {
		return
	}
	r.Extensions = extensionInfos(exts.Value())
	r.extensionsRead = true

	sig := certs.GetSignature(cert)
	if check(r, sig) {
		return
	}
	r.SignatureAlgorithm = longName(certs.GetSignatureAlgorithm(cert))
	r.Signature = Bin2Hex(sig.Value())

	raw := certs.ConvertX509ToDer(cert)
	if check(r, raw) {
		return
	}
	fp := digest.Sha256(raw.Value())
	if check(r, fp) {
		return
	}
	r.SHA256 = ColonFingerprint(fp.Value())
}

// keyDetail describes the key size: "(2048 bit)" for RSA and
// "prime256v1 (256 bit)" for EC. Other key types have no detail.
func keyDetail(pub *simplessl.PKey) string {
	if rsaRes := keys.ConvertToRsa(pub); rsaRes.Succeeded() {
		key := rsaRes.Value()
		defer key.Close()
		return fmt.Sprintf("(%d bit)", keys.GetRsaKeyBits(key).Value())
	}
	if ecRes := keys.ConvertToEcdsa(pub); ecRes.Succeeded() {
		key := ecRes.Value()
		defer key.Close()
		curve := keys.ConvertCurveToString(keys.GetCurve(key).Value())
		return fmt.Sprintf("%s (%d bit)", curve.Value(), keys.GetEcKeySize(key).Value())
	}
	return ""
}

// InspectCRL reports on the first CRL in a PEM file.
func InspectCRL(path string) Report {
	r := Report{Kind: KindCRL, Source: path}
	res := certs.ConvertPemFileToCRL(path)
	if check(&r, res) {
		return r
	}
	crl := res.Value()
	defer crl.Close()

	r.Version = versionText(certs.GetCRLVersion(crl))

	issuer := certs.GetCRLIssuer(crl)
	if check(&r, issuer) {
		return r
	}
	r.Issuer = nameFields(issuer.Value())

	updates := certs.GetCRLUpdateTimes(crl)
	if check(&r, updates) {
		return r
	}
	r.ThisUpdate = formatTime(updates.Value().This)
	r.NextUpdate = formatTime(updates.Value().Next)

	exts := certs.GetCRLExtensions(crl)
	if check(&r, exts) {
		return r
	}
	r.Extensions = extensionInfos(exts.Value())
	r.extensionsRead = true

	revoked := certs.GetRevoked(crl)
	if check(&r, revoked) {
		return r
	}
	for _, e := range revoked.Value() {
		r.Revoked = append(r.Revoked, RevokedInfo{
			Serial:     Bin2Hex(e.Serial),
			Date:       formatTime(e.Date),
			Extensions: extensionInfos(e.Extensions),
		})
	}
	r.revokedRead = true

	sig := certs.GetCRLSignature(crl)
	if check(&r, sig) {
		return r
	}
	r.SignatureAlgorithm = longName(certs.GetCRLSignatureAlgorithm(crl))
	r.Signature = Bin2Hex(sig.Value())
	return r
}

// InspectBundle reports on every certificate in a PKCS#7, PKCS#12 or JKS
// file. kind is "p7", "p12" or "jks".
func InspectBundle(path, kind string, passwords []string) ([]Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var stackRes simplessl.Result[*simplessl.CertStack]
	var reports []Report
	switch kind {
	case "p7":
		stackRes = certs.ConvertPkcs7ToCerts(data)
	case "jks":
		stackRes = certs.ConvertJksToCerts(data, passwords)
	case "p12":
		partsRes := certs.ConvertPkcs12ToParts(data, passwords)
		if partsRes.Failed() {
			return nil, fmt.Errorf("decoding PKCS#12 %s: %w", path, partsRes.Err())
		}
		parts := partsRes.Value()
		defer parts.Close()
		reports = append(reports, InspectCertificate(parts.Cert, path))
		stackRes = simplessl.OK(parts.CA.Move())
	default:
		return nil, fmt.Errorf("unsupported bundle type %q (use p7, p12 or jks)", kind)
	}
	if stackRes.Failed() {
		return nil, fmt.Errorf("decoding %s: %w", path, stackRes.Err())
	}
	stack := stackRes.Value()
	defer stack.Close()

	list := certs.StackCerts(stack)
	if list.Failed() {
		return nil, fmt.Errorf("listing certificates in %s: %w", path, list.Err())
	}
	for i, cert := range list.Value() {
		reports = append(reports, InspectCertificate(cert, fmt.Sprintf("%s[%d]", path, i)))
		cert.Close()
	}
	return reports, nil
}

func versionText(v certs.Version, raw int64) string {
	switch v {
	case certs.V1:
		return fmt.Sprintf("1 (%d)", raw)
	case certs.V2:
		return fmt.Sprintf("2 (%d)", raw)
	case certs.V3:
		return fmt.Sprintf("3 (%d)", raw)
	}
	return fmt.Sprintf("%d", raw)
}

func nameFields(n certs.Name) *NameFields {
	f := &NameFields{Text: n.Text}
	for _, e := range n.Entries {
		switch e.NID {
		case native.NIDCommonName:
			f.CommonName = e.Value
		case native.NIDCountryName:
			f.CountryName = e.Value
		case native.NIDLocalityName:
			f.LocalityName = e.Value
		case native.NIDOrganizationName:
			f.OrganizationName = e.Value
		case native.NIDStateOrProvinceName:
			f.StateOrProvinceName = e.Value
		}
	}
	return f
}

func extensionInfos(exts []certs.Extension) []ExtensionInfo {
	out := make([]ExtensionInfo, 0, len(exts))
	for _, e := range exts {
		info := ExtensionInfo{OID: e.OID, Critical: e.Critical, Known: e.NID != nid.Undef}
		if info.Known {
			info.Name = e.Name
		}
		if e.Known() {
			info.Value = e.Text
		} else {
			info.Value = Bin2Hex(e.Value)
		}
		out = append(out, info)
	}
	return out
}

func longName(n int) string {
	if ln := nid.GetLongName(n); ln.Succeeded() {
		return ln.Value()
	}
	return "unknown"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatReports renders reports as text or JSON. With color set, text
// labels are bold and errors red.
func FormatReports(reports []Report, format string, color bool) (string, error) {
	switch format {
	case "text":
		var sb strings.Builder
		for i := range reports {
			if i > 0 {
				sb.WriteString("\n")
			}
			writeReportText(&sb, &reports[i], color)
		}
		return sb.String(), nil
	case "json":
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling JSON: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text or json)", format)
	}
}

// FormatReport renders a single report.
func FormatReport(r Report, format string, color bool) (string, error) {
	return FormatReports([]Report{r}, format, color)
}

const (
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func writeReportText(sb *strings.Builder, r *Report, color bool) {
	label := func(s string) string {
		if color {
			return ansiBold + s + ansiReset
		}
		return s
	}
	if r.Version != "" {
		fmt.Fprintf(sb, "%s %s\n", label("Version:"), r.Version)
	}
	if r.Serial != "" {
		fmt.Fprintf(sb, "%s %s\n", label("Serial:"), r.Serial)
	}
	if r.Subject != nil {
		writeName(sb, label("Subject:"), r.Subject)
	}
	if r.Issuer != nil {
		writeName(sb, label("Issuer:"), r.Issuer)
	}
	if r.NotBefore != "" {
		fmt.Fprintf(sb, "%s %s\n", label("NotBefore:"), r.NotBefore)
		fmt.Fprintf(sb, "%s %s\n", label("NotAfter:"), r.NotAfter)
	}
	if r.ThisUpdate != "" {
		fmt.Fprintf(sb, "%s %s\n", label("LastUpdate:"), r.ThisUpdate)
		if r.NextUpdate != "" {
			fmt.Fprintf(sb, "%s %s\n", label("NextUpdate:"), r.NextUpdate)
		}
	}
	if r.PublicKey != nil {
		fmt.Fprintf(sb, "%s %s %s\n", label("PublicKey:"), r.PublicKey.Algorithm, r.PublicKey.Detail)
		sb.WriteString(HexLines(r.PublicKey.DER, pubKeyHexWidth))
	}
	if r.extensionsRead || len(r.Extensions) > 0 {
		fmt.Fprintf(sb, "%s %d\n", label("ExtensionCount:"), len(r.Extensions))
		for _, e := range r.Extensions {
			if e.Known {
				fmt.Fprintf(sb, "\t%s [%s]\n", e.Name, e.OID)
			} else {
				fmt.Fprintf(sb, "\toid: %s\n", e.OID)
			}
			fmt.Fprintf(sb, "\t  critical: %t\n", e.Critical)
			fmt.Fprintf(sb, "\t  %s\n", e.Value)
		}
	}
	if r.revokedRead || len(r.Revoked) > 0 {
		colon := ""
		if len(r.Revoked) > 0 {
			colon = ":"
		}
		fmt.Fprintf(sb, "%s ( %d )%s\n", label("Revoked Certificates"), len(r.Revoked), colon)
		for _, rv := range r.Revoked {
			fmt.Fprintf(sb, "\tSerial: %s\n", rv.Serial)
			fmt.Fprintf(sb, "\t  Revocation date: %s\n", rv.Date)
			if len(rv.Extensions) > 0 {
				sb.WriteString("\t  CRL entry extensions:\n")
			}
			for _, e := range rv.Extensions {
				if e.Known {
					fmt.Fprintf(sb, "\t\t%s [%s]\n", e.Name, e.OID)
				} else {
					fmt.Fprintf(sb, "\t\toid: %s\n", e.OID)
				}
				fmt.Fprintf(sb, "\t\t  %s\n", e.Value)
				if e.Critical {
					sb.WriteString("\t\t  critical: true\n")
				}
			}
		}
	}
	if r.Signature != "" {
		fmt.Fprintf(sb, "%s %s\n", label("Signature:"), r.SignatureAlgorithm)
		sb.WriteString(HexLines(r.Signature, signatureHexWidth))
	}
	if r.SHA256 != "" {
		fmt.Fprintf(sb, "%s %s\n", label("SHA-256:"), r.SHA256)
	}
	if r.Error != "" {
		if color {
			fmt.Fprintf(sb, "%s%s%s\n", ansiRed, r.Error, ansiReset)
		} else {
			fmt.Fprintf(sb, "%s\n", r.Error)
		}
	}
}

func writeName(sb *strings.Builder, heading string, n *NameFields) {
	fmt.Fprintf(sb, "%s\n", heading)
	fmt.Fprintf(sb, "\tCommonName: %s\n", n.CommonName)
	fmt.Fprintf(sb, "\tCountryName: %s\n", n.CountryName)
	fmt.Fprintf(sb, "\tLocalityName: %s\n", n.LocalityName)
	fmt.Fprintf(sb, "\tOrganizationName: %s\n", n.OrganizationName)
	fmt.Fprintf(sb, "\tStateOrProvinceName: %s\n", n.StateOrProvinceName)
}
