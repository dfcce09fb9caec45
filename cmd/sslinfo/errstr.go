package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sensiblebit/simplessl"
	"github.com/spf13/cobra"
)

var errstrCmd = &cobra.Command{
	Use:   "errstr <code>...",
	Short: "Describe error codes",
	Long:  "Print the message for each hexadecimal error code, as openssl errstr does.",
	Example: `  sslinfo errstr 0480006C
  sslinfo errstr 0x80000002`,
	Args: cobra.MinimumNArgs(1),
	RunE: runErrstr,
}

func runErrstr(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		code, err := parseErrorCode(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), simplessl.ErrorString(code))
	}
	return nil
}

// parseErrorCode reads a hexadecimal code with or without a 0x prefix.
func parseErrorCode(s string) (simplessl.ErrorCode, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid error code %q: %w", s, err)
	}
	return simplessl.ErrorCode(v), nil
}
