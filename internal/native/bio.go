package native

import (
	"io"
	"os"
)

// BIOReadFile returns the contents of path. On failure it returns false and
// records the errno, or a BIO reason when none is available.
func BIOReadFile(path string) ([]byte, bool) {
	if path == "" {
		raise(LibCrypto, ReasonPassedNullParameter)
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		raiseIO(err)
		return nil, false
	}
	return data, true
}

// BIOWriteFile writes data to path, replacing any existing file.
func BIOWriteFile(path string, data []byte) bool {
	if path == "" {
		raise(LibCrypto, ReasonPassedNullParameter)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		raiseIO(err)
		return false
	}
	return true
}

// BIOStreamFile feeds the file at path to w in fixed-size chunks.
func BIOStreamFile(path string, w io.Writer) bool {
	if path == "" {
		raise(LibCrypto, ReasonPassedNullParameter)
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		raiseIO(err)
		return false
	}
	defer f.Close()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		raiseIO(err)
		return false
	}
	return true
}
