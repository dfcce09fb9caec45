package internal

import (
	"bytes"
	"encoding/pem"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/certs"
	"github.com/sensiblebit/simplessl/digest"
	"github.com/sensiblebit/simplessl/keys"
)

// VerifyInput holds the loaded objects and verification options. The caller
// keeps ownership of every owner in it.
type VerifyInput struct {
	Cert           *simplessl.Cert
	Key            *simplessl.PKey
	Intermediates  *simplessl.CertStack
	CustomRoots    []*simplessl.Cert
	CheckChain     bool
	ExpiryDuration time.Duration
	TrustStore     string
	At             time.Time
}

// VerifyResult holds the results of certificate verification checks.
type VerifyResult struct {
	Subject     string   `json:"subject"`
	NotAfter    string   `json:"not_after"`
	SHA256      string   `json:"sha256_fingerprint,omitempty"`
	KeyMatch    *bool    `json:"key_match,omitempty"`
	KeyMatchErr string   `json:"key_match_error,omitempty"`
	KeyInfo     string   `json:"key_info,omitempty"`
	ChainValid  *bool    `json:"chain_valid,omitempty"`
	ChainErr    string   `json:"chain_error,omitempty"`
	Expiry      *bool    `json:"expires_within,omitempty"`
	ExpiryInfo  string   `json:"expiry_info,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// VerifyCert verifies a certificate with optional key matching, chain
// validation, and expiry checking. Only a certificate whose basic fields
// cannot be read is an error; failed checks are recorded in the result.
func VerifyCert(input *VerifyInput) (*VerifyResult, error) {
	cert := input.Cert

	subject := certs.GetSubject(cert)
	if subject.Failed() {
		return nil, fmt.Errorf("reading subject: %w", subject.Err())
	}
	validity := certs.GetValidity(cert)
	if validity.Failed() {
		return nil, fmt.Errorf("reading validity: %w", validity.Err())
	}
	notAfter := validity.Value().NotAfter

	result := &VerifyResult{
		Subject:  subject.Value().Text,
		NotAfter: formatTime(notAfter),
	}
	if der := certs.ConvertX509ToDer(cert); der.Succeeded() {
		if fp := digest.Sha256(der.Value()); fp.Succeeded() {
			result.SHA256 = ColonFingerprint(fp.Value())
		}
	}

	if input.Key.Valid() {
		match, err := keyMatchesCert(input.Key, cert)
		if err != nil {
			result.KeyMatchErr = fmt.Sprintf("comparing key: %v", err)
			result.Errors = append(result.Errors, result.KeyMatchErr)
		} else {
			result.KeyMatch = &match
			result.KeyInfo = privateKeyInfo(input.Key)
			if !match {
				result.Errors = append(result.Errors, "key does not match certificate")
			}
		}
	}

	if input.CheckChain {
		err := verifyChain(input)
		valid := err == nil
		result.ChainValid = &valid
		if err != nil {
			result.ChainErr = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("chain validation: %s", err.Error()))
		}
	}

	if input.ExpiryDuration > 0 {
		now := input.At
		if now.IsZero() {
			now = time.Now()
		}
		expires := now.Add(input.ExpiryDuration).After(notAfter)
		result.Expiry = &expires
		if expires {
			result.ExpiryInfo = fmt.Sprintf("certificate expires within %s (not after: %s)", input.ExpiryDuration, result.NotAfter)
			result.Errors = append(result.Errors, result.ExpiryInfo)
		} else {
			result.ExpiryInfo = fmt.Sprintf("certificate does not expire within %s", input.ExpiryDuration)
		}
	}

	return result, nil
}

// verifyChain builds a store for the requested trust source and verifies
// the certificate against it.
func verifyChain(input *VerifyInput) error {
	var storeRes simplessl.Result[*simplessl.Store]
	switch input.TrustStore {
	case "", "mozilla":
		storeRes = certs.LoadMozillaStore()
	case "custom":
		if len(input.CustomRoots) == 0 {
			return fmt.Errorf("custom trust store requested but no roots were given")
		}
		storeRes = certs.NewStore(input.CustomRoots...)
	default:
		return fmt.Errorf("unknown trust store %q (use mozilla or custom)", input.TrustStore)
	}
	if storeRes.Failed() {
		return storeRes.Err()
	}
	store := storeRes.Value()
	defer store.Close()

	if input.At.IsZero() {
		return certs.VerifyChain(store, input.Cert, input.Intermediates).Err()
	}
	return certs.VerifyChainAt(store, input.Cert, input.Intermediates, input.At).Err()
}

// keyMatchesCert compares the public half of key with the certificate's key.
func keyMatchesCert(key *simplessl.PKey, cert *simplessl.Cert) (bool, error) {
	pubRes := certs.GetPubKey(cert)
	if pubRes.Failed() {
		return false, pubRes.Err()
	}
	pub := pubRes.Value()
	defer pub.Close()

	certDER := keys.ConvertPubKeyToDer(pub)
	if certDER.Failed() {
		return false, certDER.Err()
	}
	keyDER := keys.ConvertPubKeyToDer(key)
	if keyDER.Failed() {
		return false, keyDER.Err()
	}
	return bytes.Equal(certDER.Value(), keyDER.Value()), nil
}

func privateKeyInfo(key *simplessl.PKey) string {
	kt := keys.GetKeyType(key)
	if kt.Failed() {
		return "unknown"
	}
	if detail := keyDetail(key); detail != "" {
		return fmt.Sprintf("%s %s", kt.Value(), detail)
	}
	return kt.Value().String()
}

// LoadCertBundle reads a PEM file whose first certificate is the leaf and
// whose remaining certificates are intermediates. The caller owns both
// returned owners.
func LoadCertBundle(path string) (*simplessl.Cert, *simplessl.CertStack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var leaf *simplessl.Cert
	stack := certs.NewStack()
	fail := func(err error) (*simplessl.Cert, *simplessl.CertStack, error) {
		_ = leaf.Close()
		_ = stack.Close()
		return nil, nil, err
	}

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		res := certs.ConvertDerToX509(block.Bytes)
		if res.Failed() {
			return fail(fmt.Errorf("parsing certificate in %s: %w", path, res.Err()))
		}
		if leaf == nil {
			leaf = res.Value()
			continue
		}
		cert := res.Value()
		if push := certs.StackPush(stack, cert); push.Failed() {
			_ = cert.Close()
			return fail(fmt.Errorf("adding intermediate from %s: %w", path, push.Err()))
		}
	}
	if leaf == nil {
		return fail(fmt.Errorf("no certificates found in %s", path))
	}
	return leaf, stack, nil
}

// daysUntil returns the number of days from now until t, rounded down.
func daysUntil(t time.Time) int {
	return int(math.Floor(time.Until(t).Hours() / 24))
}

// FormatVerifyResult formats a verify result as human-readable text.
func FormatVerifyResult(r *VerifyResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Certificate: %s\n", r.Subject)

	notAfter, err := time.Parse(time.RFC3339, r.NotAfter)
	if err == nil {
		fmt.Fprintf(&sb, "  Not After: %s (%d days)\n", r.NotAfter, daysUntil(notAfter))
	} else {
		fmt.Fprintf(&sb, "  Not After: %s\n", r.NotAfter)
	}
	if r.SHA256 != "" {
		fmt.Fprintf(&sb, "    SHA-256: %s\n", r.SHA256)
	}

	if r.KeyMatch != nil {
		if *r.KeyMatch {
			fmt.Fprintf(&sb, "  Key Match: OK (%s)\n", r.KeyInfo)
		} else {
			fmt.Fprintf(&sb, "  Key Match: MISMATCH (%s)\n", r.KeyInfo)
		}
	} else if r.KeyMatchErr != "" {
		fmt.Fprintf(&sb, "  Key Match: ERROR (%s)\n", r.KeyMatchErr)
	}

	if r.ChainValid != nil {
		if *r.ChainValid {
			sb.WriteString("      Chain: VALID\n")
		} else {
			fmt.Fprintf(&sb, "      Chain: INVALID (%s)\n", r.ChainErr)
		}
	}

	if r.Expiry != nil {
		fmt.Fprintf(&sb, "\n  Expiry: %s\n", r.ExpiryInfo)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&sb, "\nVerification FAILED (%d error(s))\n", len(r.Errors))
	} else {
		sb.WriteString("\nVerification OK\n")
	}

	return sb.String()
}
