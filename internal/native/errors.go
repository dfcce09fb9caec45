package native

import (
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"
	"syscall"
)

// ErrorCode is a packed library/reason pair as reported by ErrGetError.
// Zero means "no error".
type ErrorCode uint64

// Library identifiers, packed into bits 23..30 of an ErrorCode.
const (
	LibSys      = 2
	LibBN       = 3
	LibRSA      = 4
	LibEVP      = 6
	LibOBJ      = 8
	LibPEM      = 9
	LibX509     = 11
	LibASN1     = 13
	LibCrypto   = 15
	LibEC       = 16
	LibBIO      = 32
	LibPKCS7    = 33
	LibX509V3   = 34
	LibPKCS12   = 35
	LibKeystore = 128
)

// Reason codes. Their descriptions live in errcatalog.yaml.
const (
	// LibCrypto
	ReasonPassedInvalidArgument = 65
	ReasonInvalidHandle         = 66
	ReasonPassedNullParameter   = 67
	ReasonInternalError         = 68

	// LibBIO
	ReasonSysLib     = 2
	ReasonNoSuchFile = 128

	// LibPEM
	ReasonBadBase64Decode     = 100
	ReasonBadDecrypt          = 101
	ReasonBadPasswordRead     = 104
	ReasonNoStartLine         = 108
	ReasonUnsupportedKeyBlock = 118

	// LibASN1
	ReasonNestedASN1Error = 58
	ReasonDecodeError     = 110
	ReasonHeaderTooLong   = 123
	ReasonNotEnoughData   = 142
	ReasonWrongTag        = 168

	// LibX509
	ReasonKeyValuesMismatch       = 116
	ReasonUnknownKeyType          = 117
	ReasonCertVerifyFailed        = 125
	ReasonX509SignatureFailure    = 126
	ReasonIndexOutOfRange         = 127
	ReasonUnsupportedSignatureAlg = 128

	// LibEVP
	ReasonVerifyFailure        = 107
	ReasonUnsupportedAlgorithm = 118
	ReasonExpectingAnRSAKey    = 127
	ReasonExpectingAnECKey     = 142

	// LibRSA
	ReasonBadSignature    = 104
	ReasonKeySizeTooSmall = 120

	// LibEC
	ReasonUnknownGroup = 129

	// LibBN
	ReasonBignumTooLong = 102
	ReasonInvalidLength = 106

	// LibOBJ
	ReasonUnknownNID        = 101
	ReasonUnknownObjectName = 102

	// LibPKCS7
	ReasonPKCS7DecodeError    = 100
	ReasonPKCS7NoCertificates = 117

	// LibPKCS12
	ReasonPKCS12EncodeError      = 105
	ReasonPKCS12MacVerifyFailure = 113
	ReasonPKCS12ParseError       = 114

	// LibX509V3
	ReasonX509V3BadObject = 101

	// LibKeystore
	ReasonKeystoreLoadFailure  = 100
	ReasonKeystoreNoEntries    = 101
	ReasonKeystoreStoreFailure = 102
)

const (
	libShift   = 23
	libMask    = 0xFF
	reasonMask = 0x7FFFFF
	systemFlag = 1 << 31
)

// ErrInternalCode is reported when a failure carries no usable code.
var ErrInternalCode = ErrPack(LibCrypto, ReasonInternalError)

// ErrPack packs a library and reason into an ErrorCode.
func ErrPack(lib, reason int) ErrorCode {
	return ErrorCode(uint64(lib&libMask)<<libShift | uint64(reason&reasonMask))
}

// ErrSystem packs an errno value into an ErrorCode.
func ErrSystem(errno uintptr) ErrorCode {
	return ErrorCode(systemFlag | uint64(errno)&(systemFlag-1))
}

// ErrIsSystem reports whether code carries an errno value.
func ErrIsSystem(code ErrorCode) bool {
	return code&systemFlag != 0
}

// ErrLib returns the library part of code.
func ErrLib(code ErrorCode) int {
	if ErrIsSystem(code) {
		return LibSys
	}
	return int(uint64(code)>>libShift) & libMask
}

// ErrReason returns the reason part of code.
func ErrReason(code ErrorCode) int {
	if ErrIsSystem(code) {
		return int(uint64(code) &^ systemFlag)
	}
	return int(uint64(code) & reasonMask)
}

// lastError is the single last-error slot. It is not a queue: every failure
// overwrites whatever was recorded before.
var lastError atomic.Uint64

// ErrGetError returns the code of the most recent failure and clears the slot.
// The slot is shared by the whole process; callers that use the engine from
// several goroutines at once must serialize their calls if they need codes
// attributed correctly.
func ErrGetError() ErrorCode {
	return ErrorCode(lastError.Swap(0))
}

// ErrPeekLastError returns the code of the most recent failure without
// clearing the slot.
func ErrPeekLastError() ErrorCode {
	return ErrorCode(lastError.Load())
}

// ErrClearError empties the last-error slot.
func ErrClearError() {
	lastError.Store(0)
}

func raise(lib, reason int) {
	lastError.Store(uint64(ErrPack(lib, reason)))
}

func raiseCode(code ErrorCode) {
	lastError.Store(uint64(code))
}

// raiseIO records an I/O failure, preferring the underlying errno.
func raiseIO(err error) {
	var errno syscall.Errno
	switch {
	case errors.As(err, &errno):
		raiseCode(ErrSystem(uintptr(errno)))
	case errors.Is(err, fs.ErrNotExist):
		raise(LibBIO, ReasonNoSuchFile)
	default:
		raise(LibBIO, ReasonSysLib)
	}
}

// ErrorString renders code as "error:<hex>:<library>::<reason>". The second
// result is false when either the library or the reason is not in the catalog.
func ErrorString(code ErrorCode) (string, bool) {
	if code == 0 {
		return "", false
	}
	if ErrIsSystem(code) {
		reason, ok := systemReason(uintptr(ErrReason(code)))
		if !ok {
			return "", false
		}
		return fmt.Sprintf("error:%08X:%s::%s", uint64(code), libraryName(LibSys), reason), true
	}
	lib, ok := lookupLibrary(ErrLib(code))
	if !ok {
		return "", false
	}
	reason, ok := lib.Reasons[ErrReason(code)]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("error:%08X:%s::%s", uint64(code), lib.Name, reason), true
}

// ReasonString returns only the reason text for code.
func ReasonString(code ErrorCode) (string, bool) {
	if code == 0 {
		return "", false
	}
	if ErrIsSystem(code) {
		return systemReason(uintptr(ErrReason(code)))
	}
	lib, ok := lookupLibrary(ErrLib(code))
	if !ok {
		return "", false
	}
	reason, ok := lib.Reasons[ErrReason(code)]
	return reason, ok
}
