package internal

import (
	"encoding/hex"
	"strings"
)

// Bin2Hex renders b as lowercase hex without separators.
func Bin2Hex(b []byte) string {
	return hex.EncodeToString(b)
}

// Bin2Text copies b into a string byte for byte.
func Bin2Text(b []byte) string {
	return string(b)
}

// HexLines lays out a hex string as a tab-indented block: a space after
// every byte pair and a line break every newLine hex characters. The
// result always ends in a newline.
func HexLines(hexStr string, newLine int) string {
	var sb strings.Builder
	sb.WriteByte('\t')
	for i := 1; i <= len(hexStr); i++ {
		sb.WriteByte(hexStr[i-1])
		if i%2 == 0 {
			sb.WriteByte(' ')
		}
		if newLine > 0 && i%newLine == 0 && i != len(hexStr) {
			sb.WriteString("\n\t")
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// ColonFingerprint renders a digest as uppercase colon-separated hex
// (AA:BB:CC:...).
func ColonFingerprint(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{c}))
	}
	return strings.Join(parts, ":")
}
