package native

import (
	"time"

	"github.com/breml/rootcerts/embedded"
	ctx509 "github.com/google/certificate-transparency-go/x509"
)

// X509StoreNew returns an empty trust store.
func X509StoreNew() Handle {
	return put(ctx509.NewCertPool())
}

// X509StoreLoadMozilla returns a trust store holding the Mozilla root
// program's certificates as embedded at build time.
func X509StoreLoadMozilla() Handle {
	pool := ctx509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(embedded.MozillaCACertificatesPEM())) {
		raise(LibPEM, ReasonNoStartLine)
		return Null
	}
	return put(pool)
}

// X509StoreAddCert adds a copy of cert to the store. The caller keeps
// ownership of cert.
func X509StoreAddCert(store, cert Handle) bool {
	pool, ok := lookup[*ctx509.CertPool](store)
	if !ok {
		return false
	}
	c, ok := lookup[*ctx509.Certificate](cert)
	if !ok {
		return false
	}
	pool.AddCert(c)
	return true
}

// X509StoreFree releases a trust store.
func X509StoreFree(h Handle) {
	drop[*ctx509.CertPool](h)
}

// X509VerifyCert builds a chain from cert to a root in store, using the
// optional intermediates stack. A zero at time means now.
func X509VerifyCert(store, cert, intermediates Handle, at time.Time) bool {
	pool, ok := lookup[*ctx509.CertPool](store)
	if !ok {
		return false
	}
	c, ok := lookup[*ctx509.Certificate](cert)
	if !ok {
		return false
	}
	opts := ctx509.VerifyOptions{
		Roots:       pool,
		CurrentTime: at,
		KeyUsages:   []ctx509.ExtKeyUsage{ctx509.ExtKeyUsageAny},
	}
	if intermediates != Null {
		certs, ok := stackCerts(intermediates)
		if !ok {
			return false
		}
		inter := ctx509.NewCertPool()
		for _, ic := range certs {
			inter.AddCert(ic)
		}
		opts.Intermediates = inter
	}
	if _, err := c.Verify(opts); err != nil {
		raise(LibX509, ReasonCertVerifyFailed)
		return false
	}
	return true
}
