package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sensiblebit/simplessl"
	"github.com/sensiblebit/simplessl/internal"
	"github.com/sensiblebit/simplessl/internal/catalog"
	"github.com/sensiblebit/simplessl/internal/native"
	"github.com/spf13/cobra"
)

var (
	logLevel     string
	dbPath       string
	passwordList []string
	passwordFile string
	catalogPath  string
	inputFile    string

	inputType    = newEnum("type", "cert", "cert", "crl", "p7", "p12", "jks")
	outputFormat = newEnum("format", "text", "text", "json")
	colorMode    = newEnum("mode", "auto", "auto", "always", "never")
)

var rootCmd = &cobra.Command{
	Use:   "sslinfo",
	Short: "Inspect X.509 certificates and CRLs",
	Long:  "Print the fields of an X.509 certificate, CRL or certificate container: version, serial, names, key, extensions, revoked entries and signature.",
	Example: `  sslinfo -f cert.pem
  sslinfo -f ca.crl -t crl
  sslinfo -f bundle.p12 -t p12 -p secret --format json`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runInspect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite file recording inspection history (default: none)")
	rootCmd.PersistentFlags().StringSliceVarP(&passwordList, "passwords", "p", nil, "Comma-separated passwords for encrypted containers and keys")
	rootCmd.PersistentFlags().StringVar(&passwordFile, "password-file", "", "File containing passwords, one per line")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "error-catalog", "", "YAML error catalog overlaying the built-in messages")
	rootCmd.PersistentFlags().Var(colorMode, "color", "Colour text output: auto, always, never")

	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Input file")
	rootCmd.Flags().VarP(inputType, "type", "t", "Input type: cert, crl, p7, p12, jks")
	rootCmd.Flags().Var(outputFormat, "format", "Output format: text or json")
	_ = rootCmd.MarkFlagRequired("file")

	registerCompletions(rootCmd,
		flagCompletion{"file", certFileCompletion},
		flagCompletion{"type", enumCompletion(inputType)},
		flagCompletion{"format", enumCompletion(outputFormat)},
		flagCompletion{"color", enumCompletion(colorMode)},
		flagCompletion{"log-level", fixedCompletion("debug", "info", "warning", "error")},
	)

	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(errstrCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup configures logging and the error catalog before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	level, err := internal.ParseLogLevel(logLevel)
	if err != nil {
		return err
	}
	internal.SetupLogger(cmd.ErrOrStderr(), level)

	if catalogPath != "" {
		if err := native.LoadCatalog(catalogPath); err != nil {
			return fmt.Errorf("loading error catalog: %w", err)
		}
		slog.Info("error catalog loaded", "path", catalogPath)
	}
	return nil
}

func runInspect(cmd *cobra.Command, _ []string) error {
	var reports []internal.Report
	switch inputType.String() {
	case "cert":
		reports = []internal.Report{internal.InspectCert(inputFile)}
	case "crl":
		reports = []internal.Report{internal.InspectCRL(inputFile)}
	default:
		passwords, err := internal.ProcessPasswords(passwordList, passwordFile)
		if err != nil {
			return fmt.Errorf("loading passwords: %w", err)
		}
		reports, err = internal.InspectBundle(inputFile, inputType.String(), passwords)
		if err != nil {
			// Library failures are reported, not fatal.
			var libErr *simplessl.Error
			if errors.As(err, &libErr) {
				fmt.Fprintln(cmd.OutOrStdout(), simplessl.ErrorString(libErr.Code))
				return nil
			}
			return err
		}
	}

	output, err := internal.FormatReports(reports, outputFormat.String(), useColor(colorMode.String(), os.Stdout))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)

	if dbPath == "" {
		return nil
	}
	return withCatalog(dbPath, func(db *catalog.DB) error {
		for _, r := range reports {
			if err := db.Record(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// withCatalog loads the history at path into memory, runs fn and writes
// the result back. The file is replaced through a temporary copy.
func withCatalog(path string, fn func(*catalog.DB) error) error {
	db, err := catalog.NewDB()
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err == nil {
		if err := db.LoadFromDisk(path); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking catalog %s: %w", path, err)
	}

	if err := fn(db); err != nil {
		return err
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if err := db.SaveToDisk(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing catalog %s: %w", path, err)
	}
	return nil
}
