package native

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// signed is the outer structure shared by certificates and CRLs:
// SEQUENCE { tbs, AlgorithmIdentifier, BIT STRING }.
type signed struct {
	tbs       []byte
	tbsBody   cryptobyte.String
	sigAlg    asn1.ObjectIdentifier
	signature []byte
}

func splitSigned(der []byte) (signed, bool) {
	var s signed
	input := cryptobyte.String(der)
	var outer, tbs, alg cryptobyte.String
	if !input.ReadASN1(&outer, cbasn1.SEQUENCE) || !input.Empty() {
		return s, false
	}
	if !outer.ReadASN1Element(&tbs, cbasn1.SEQUENCE) {
		return s, false
	}
	s.tbs = tbs
	if !tbs.ReadASN1(&s.tbsBody, cbasn1.SEQUENCE) {
		return s, false
	}
	if !outer.ReadASN1(&alg, cbasn1.SEQUENCE) || !alg.ReadASN1ObjectIdentifier(&s.sigAlg) {
		return s, false
	}
	var bits asn1.BitString
	if !outer.ReadASN1BitString(&bits) {
		return s, false
	}
	s.signature = bits.RightAlign()
	return s, true
}

// readVersion consumes an optional version from a TBS body. Certificates
// carry it as [0] EXPLICIT INTEGER, CRLs as a bare INTEGER. Absent means v1.
func readVersion(body *cryptobyte.String, explicit bool) (int64, bool) {
	var v int64
	if explicit {
		var inner cryptobyte.String
		var present bool
		if !body.ReadOptionalASN1(&inner, &present, cbasn1.Tag(0).Constructed().ContextSpecific()) {
			return 0, false
		}
		if !present {
			return 0, true
		}
		if !inner.ReadASN1Integer(&v) {
			return 0, false
		}
		return v, true
	}
	if !body.PeekASN1Tag(cbasn1.INTEGER) {
		return 0, true
	}
	if !body.ReadASN1Integer(&v) {
		return 0, false
	}
	return v, true
}

// certSerialContent returns the content octets of a certificate's serial
// number INTEGER, exactly as encoded.
func certSerialContent(der []byte) ([]byte, bool) {
	s, ok := splitSigned(der)
	if !ok {
		return nil, false
	}
	body := s.tbsBody
	if _, ok := readVersion(&body, true); !ok {
		return nil, false
	}
	var serial cryptobyte.String
	if !body.ReadASN1(&serial, cbasn1.INTEGER) {
		return nil, false
	}
	return append([]byte(nil), serial...), true
}

// entrySerialContent does the same for a revokedCertificates entry.
func entrySerialContent(entry []byte) ([]byte, bool) {
	input := cryptobyte.String(entry)
	var seq, serial cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !seq.ReadASN1(&serial, cbasn1.INTEGER) {
		return nil, false
	}
	return append([]byte(nil), serial...), true
}

// spkiAlgorithm returns the algorithm OID of a SubjectPublicKeyInfo and, for
// EC keys, the named curve OID from its parameters.
func spkiAlgorithm(spki []byte) (alg, params asn1.ObjectIdentifier, ok bool) {
	input := cryptobyte.String(spki)
	var seq, algSeq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !seq.ReadASN1(&algSeq, cbasn1.SEQUENCE) {
		return nil, nil, false
	}
	if !algSeq.ReadASN1ObjectIdentifier(&alg) {
		return nil, nil, false
	}
	if algSeq.PeekASN1Tag(cbasn1.OBJECT_IDENTIFIER) {
		algSeq.ReadASN1ObjectIdentifier(&params)
	}
	return alg, params, true
}

var errWrongKey = errors.New("key does not match signature algorithm")

// verifySigned checks s.signature over s.tbs with pub, recording a reason in
// the slot when it fails.
func verifySigned(s signed, pub crypto.PublicKey) bool {
	err := checkSignature(oidToNID(s.sigAlg), pub, s.tbs, s.signature)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errUnsupportedSigAlg):
		raise(LibX509, ReasonUnsupportedSignatureAlg)
	case errors.Is(err, errWrongKey):
		raise(LibX509, ReasonKeyValuesMismatch)
	default:
		raise(LibX509, ReasonX509SignatureFailure)
	}
	return false
}

var errUnsupportedSigAlg = errors.New("unsupported signature algorithm")

func checkSignature(sigNID int, pub crypto.PublicKey, msg, sig []byte) error {
	var h crypto.Hash
	switch sigNID {
	case NIDSHA1WithRSA, NIDECDSAWithSHA1:
		h = crypto.SHA1
	case NIDSHA256WithRSA, NIDECDSAWithSHA256:
		h = crypto.SHA256
	case NIDSHA384WithRSA, NIDECDSAWithSHA384:
		h = crypto.SHA384
	case NIDSHA512WithRSA, NIDECDSAWithSHA512:
		h = crypto.SHA512
	case NIDED25519:
		k, ok := pub.(ed25519.PublicKey)
		if !ok {
			return errWrongKey
		}
		if !ed25519.Verify(k, msg, sig) {
			return errors.New("ed25519 verification failed")
		}
		return nil
	default:
		return errUnsupportedSigAlg
	}

	hf := h.New()
	hf.Write(msg)
	digest := hf.Sum(nil)

	switch sigNID {
	case NIDSHA1WithRSA, NIDSHA256WithRSA, NIDSHA384WithRSA, NIDSHA512WithRSA:
		k, ok := pub.(*rsa.PublicKey)
		if !ok {
			return errWrongKey
		}
		return rsa.VerifyPKCS1v15(k, h, digest, sig)
	default:
		k, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return errWrongKey
		}
		if !ecdsa.VerifyASN1(k, digest, sig) {
			return errors.New("ecdsa verification failed")
		}
		return nil
	}
}
