package native

import (
	ctx509 "github.com/google/certificate-transparency-go/x509"
)

// certStack owns the certificate handles it holds.
type certStack struct {
	items []Handle
}

// SKX509New returns an empty certificate stack.
func SKX509New() Handle {
	return put(&certStack{})
}

// SKX509Num returns the number of certificates on the stack, or -1.
func SKX509Num(h Handle) int {
	s, ok := lookup[*certStack](h)
	if !ok {
		return -1
	}
	return len(s.items)
}

// SKX509Value returns the i-th certificate. The handle stays owned by the
// stack.
func SKX509Value(h Handle, i int) Handle {
	s, ok := lookup[*certStack](h)
	if !ok {
		return Null
	}
	if i < 0 || i >= len(s.items) {
		raise(LibX509, ReasonIndexOutOfRange)
		return Null
	}
	return s.items[i]
}

// SKX509Push appends cert to the stack, which takes ownership of it.
func SKX509Push(h, cert Handle) bool {
	s, ok := lookup[*certStack](h)
	if !ok {
		return false
	}
	if _, ok := lookup[*ctx509.Certificate](cert); !ok {
		return false
	}
	s.items = append(s.items, cert)
	return true
}

// SKX509PopFree frees every certificate on the stack and then the stack.
func SKX509PopFree(h Handle) {
	s, ok := drop[*certStack](h)
	if !ok {
		return
	}
	for _, c := range s.items {
		X509Free(c)
	}
}

func stackCerts(h Handle) ([]*ctx509.Certificate, bool) {
	s, ok := lookup[*certStack](h)
	if !ok {
		return nil, false
	}
	certs := make([]*ctx509.Certificate, 0, len(s.items))
	for _, item := range s.items {
		c, ok := lookup[*ctx509.Certificate](item)
		if !ok {
			return nil, false
		}
		certs = append(certs, c)
	}
	return certs, true
}

// pushDER parses der and appends the result to the stack.
func pushDER(stack Handle, der []byte) bool {
	c := D2IX509(der)
	if c == Null {
		return false
	}
	if !SKX509Push(stack, c) {
		X509Free(c)
		return false
	}
	return true
}
