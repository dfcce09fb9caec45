package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/certs"
	"github.com/sensiblebit/simplessl/internal"
	"github.com/sensiblebit/simplessl/keys"
	"github.com/spf13/cobra"
)

var (
	verifyKeyPath    string
	verifyChain      bool
	verifyExpiry     string
	verifyRootsPath  string
	verifyAt         string
	verifyFormat     = newEnum("format", "text", "text", "json")
	verifyTrustStore = newEnum("store", "mozilla", "mozilla", "custom")
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify certificate chain, key match, or expiry",
	Long: `Verify a certificate's chain of trust, check if a key matches, or check if it expires within a given duration.

The first certificate in <file> is verified; any further certificates are used as intermediates.`,
	Example: `  sslinfo verify chain.pem --chain
  sslinfo verify leaf.pem --chain --trust-store custom --roots ca.pem
  sslinfo verify leaf.pem --key leaf.key --expiry 30d`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyKeyPath, "key", "", "Private key file to check against the certificate")
	verifyCmd.Flags().BoolVar(&verifyChain, "chain", false, "Verify the certificate chain of trust")
	verifyCmd.Flags().StringVarP(&verifyExpiry, "expiry", "e", "", "Check if cert expires within duration (e.g., 30d, 720h)")
	verifyCmd.Flags().Var(verifyTrustStore, "trust-store", "Trust store for chain validation: mozilla, custom")
	verifyCmd.Flags().StringVar(&verifyRootsPath, "roots", "", "PEM file of trusted roots for --trust-store custom")
	verifyCmd.Flags().StringVar(&verifyAt, "at", "", "Verify as of this RFC 3339 time instead of now")
	verifyCmd.Flags().Var(verifyFormat, "format", "Output format: text or json")

	registerCompletions(verifyCmd,
		flagCompletion{"key", certFileCompletion},
		flagCompletion{"roots", certFileCompletion},
		flagCompletion{"trust-store", enumCompletion(verifyTrustStore)},
		flagCompletion{"format", enumCompletion(verifyFormat)},
	)
}

// parseDuration extends time.ParseDuration to support a "d" suffix for days.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		trimmed := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func runVerify(cmd *cobra.Command, args []string) error {
	input := &internal.VerifyInput{
		CheckChain: verifyChain,
		TrustStore: verifyTrustStore.String(),
	}

	if verifyExpiry != "" {
		d, err := parseDuration(verifyExpiry)
		if err != nil {
			return fmt.Errorf("invalid --expiry value: %w", err)
		}
		input.ExpiryDuration = d
	}
	if verifyAt != "" {
		at, err := time.Parse(time.RFC3339, verifyAt)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
		input.At = at
	}

	cert, intermediates, err := internal.LoadCertBundle(args[0])
	if err != nil {
		return err
	}
	defer cert.Close()
	defer intermediates.Close()
	input.Cert = cert
	input.Intermediates = intermediates

	if verifyKeyPath != "" {
		passwords, err := internal.ProcessPasswords(passwordList, passwordFile)
		if err != nil {
			return fmt.Errorf("loading passwords: %w", err)
		}
		keyRes := keys.ConvertPemFileToPrivKey(verifyKeyPath, passwords)
		if keyRes.Failed() {
			return fmt.Errorf("loading key %s: %w", verifyKeyPath, keyRes.Err())
		}
		key := keyRes.Value()
		defer key.Close()
		input.Key = key
	}

	if verifyRootsPath != "" {
		roots, err := loadRoots(verifyRootsPath)
		if err != nil {
			return err
		}
		defer func() {
			for _, r := range roots {
				_ = r.Close()
			}
		}()
		input.CustomRoots = roots
	}

	result, err := internal.VerifyCert(input)
	if err != nil {
		return err
	}

	switch verifyFormat.String() {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	default:
		fmt.Fprint(cmd.OutOrStdout(), internal.FormatVerifyResult(result))
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("verification failed")
	}
	return nil
}

// loadRoots reads every certificate in a PEM file as an owned root.
func loadRoots(path string) ([]*simplessl.Cert, error) {
	first, rest, err := internal.LoadCertBundle(path)
	if err != nil {
		return nil, fmt.Errorf("loading roots: %w", err)
	}
	defer rest.Close()

	roots := []*simplessl.Cert{first}
	others := certs.StackCerts(rest)
	if others.Failed() {
		_ = first.Close()
		return nil, fmt.Errorf("loading roots: %w", others.Err())
	}
	return append(roots, others.Value()...), nil
}
