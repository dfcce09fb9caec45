package main

import (
	"fmt"

	"github.com/sensiblebit/simplessl/digest"
	"github.com/sensiblebit/simplessl/internal"
	"github.com/spf13/cobra"
)

var hashAlgorithm = newEnum("algorithm", "sha256", "sha1", "sha256", "sha384", "sha512")

var hashAlgorithms = map[string]digest.Algorithm{
	"sha1":   digest.SHA1,
	"sha256": digest.SHA256,
	"sha384": digest.SHA384,
	"sha512": digest.SHA512,
}

var hashCmd = &cobra.Command{
	Use:   "hash <file>...",
	Short: "Print file digests",
	Long:  "Print the digest of each file in the same layout as sha256sum.",
	Example: `  sslinfo hash cert.der
  sslinfo hash -a sha512 a.pem b.pem`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().VarP(hashAlgorithm, "algorithm", "a", "Digest: sha1, sha256, sha384, sha512")
	registerCompletions(hashCmd, flagCompletion{"algorithm", enumCompletion(hashAlgorithm)})
}

func runHash(cmd *cobra.Command, args []string) error {
	alg := hashAlgorithms[hashAlgorithm.String()]
	out := cmd.OutOrStdout()
	for _, path := range args {
		sum := digest.SumFile(alg, path)
		if sum.Failed() {
			fmt.Fprintf(out, "%s: %s\n", path, sum.Message())
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", internal.Bin2Hex(sum.Value()), path)
	}
	return nil
}
